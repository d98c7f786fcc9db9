package assistant

import (
	"sync"
	"time"
)

// DefaultCaptionTTL is how long a caption stays visible after the response
// that produced it.
const DefaultCaptionTTL = 5 * time.Second

// Captions is the transient caption line. Updates are last-write-wins: Set
// cancels the previous auto-clear timer, so only the most recent response's
// timer ever fires.
type Captions struct {
	mu       sync.Mutex
	text     string
	visible  bool
	ttl      time.Duration
	timer    *time.Timer
	gen      uint64
	onChange func(text string, visible bool)
}

func NewCaptions(ttl time.Duration) *Captions {
	if ttl <= 0 {
		ttl = DefaultCaptionTTL
	}
	return &Captions{ttl: ttl}
}

// SetOnChange registers a listener for caption updates. Called outside the
// lock; the host uses it to repaint.
func (c *Captions) SetOnChange(fn func(text string, visible bool)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Set shows a caption and schedules its auto-clear.
func (c *Captions) Set(text string) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	if c.timer != nil {
		c.timer.Stop()
	}
	c.text = text
	c.visible = true
	c.timer = time.AfterFunc(c.ttl, func() { c.clearIf(gen) })
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(text, true)
	}
}

// clearIf drops the caption only if no newer Set superseded the timer. The
// generation check covers the window where a timer has fired but Set already
// holds the lock.
func (c *Captions) clearIf(gen uint64) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.text = ""
	c.visible = false
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn("", false)
	}
}

// Clear hides the caption immediately.
func (c *Captions) Clear() {
	c.mu.Lock()
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
	}
	c.text = ""
	c.visible = false
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn("", false)
	}
}

// Current returns the caption text and whether one is visible.
func (c *Captions) Current() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, c.visible
}
