package voice_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auralabs/lyra/internal/app/assistant"
	"github.com/auralabs/lyra/internal/app/voice"
	"github.com/auralabs/lyra/internal/audio"
	"github.com/auralabs/lyra/internal/domain"
)

type fakeLiveChannel struct {
	mu     sync.Mutex
	events chan domain.LiveEvent
	sent   [][]byte
	closed bool
}

func newFakeLiveChannel() *fakeLiveChannel {
	return &fakeLiveChannel{events: make(chan domain.LiveEvent, 16)}
}

func (f *fakeLiveChannel) SendAudio(frame []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := append([]byte(nil), frame...)
	f.sent = append(f.sent, cp)
	return nil
}

func (f *fakeLiveChannel) Events() <-chan domain.LiveEvent { return f.events }

func (f *fakeLiveChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.events)
	}
	return nil
}

func (f *fakeLiveChannel) sentFrames() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeDialer struct {
	ch  *fakeLiveChannel
	err error

	mu    sync.Mutex
	calls int
}

func (d *fakeDialer) Connect(context.Context, domain.LiveConfig) (domain.LiveChannel, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	return d.ch, nil
}

// gatedDialer blocks every Connect until released, so tests can hold two
// toggles in the dialing window at once.
type gatedDialer struct {
	release chan struct{}

	mu    sync.Mutex
	calls int
	chs   []*fakeLiveChannel
}

func newGatedDialer() *gatedDialer {
	return &gatedDialer{release: make(chan struct{})}
}

func (d *gatedDialer) Connect(context.Context, domain.LiveConfig) (domain.LiveChannel, error) {
	d.mu.Lock()
	d.calls++
	ch := newFakeLiveChannel()
	d.chs = append(d.chs, ch)
	d.mu.Unlock()
	<-d.release
	return ch, nil
}

type deniedSource struct{}

func (deniedSource) Start(context.Context) (<-chan []float32, int, error) {
	return nil, 0, errors.New("permission denied")
}
func (deniedSource) Stop() {}

// framedSource emits a fixed set of frames then idles until stopped.
type framedSource struct {
	frames [][]float32
	rate   int

	mu      sync.Mutex
	stopped chan struct{}
}

func (s *framedSource) Start(ctx context.Context) (<-chan []float32, int, error) {
	s.mu.Lock()
	s.stopped = make(chan struct{})
	stopped := s.stopped
	s.mu.Unlock()

	out := make(chan []float32)
	go func() {
		defer close(out)
		for _, f := range s.frames {
			select {
			case out <- f:
			case <-stopped:
				return
			case <-ctx.Done():
				return
			}
		}
		select {
		case <-stopped:
		case <-ctx.Done():
		}
	}()
	return out, s.rate, nil
}

func (s *framedSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped != nil {
		select {
		case <-s.stopped:
		default:
			close(s.stopped)
		}
	}
}

type countingSink struct {
	mu     sync.Mutex
	starts []time.Time
	stops  int
}

func (s *countingSink) PlayAt(_ []float32, _ int, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts = append(s.starts, at)
}

func (s *countingSink) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func newChannel(dialer domain.LiveDialer, source audio.Source, sink audio.Sink, now func() time.Time) (*voice.Channel, *assistant.Captions) {
	captions := assistant.NewCaptions(time.Minute)
	sched := audio.NewSchedulerWithClock(sink, now)
	ch := voice.NewChannel(dialer, source, sched, captions, func() string { return "Zephyr" })
	return ch, captions
}

func TestToggleLiveAndGaplessPlayback(t *testing.T) {
	epoch := time.Unix(0, 0)
	sink := &countingSink{}
	live := newFakeLiveChannel()
	dialer := &fakeDialer{ch: live}

	ch, captions := newChannel(dialer, audio.NewSilentSource(), sink, func() time.Time { return epoch })
	require.NoError(t, ch.Toggle(context.Background()))
	require.True(t, ch.Live())

	// Three frames at 24kHz: 2400, 1200, 4800 samples = 100ms, 50ms, 200ms.
	live.events <- domain.LiveEvent{Audio: audio.EncodePCM16(make([]float32, 2400)), SampleRate: 24000}
	live.events <- domain.LiveEvent{Audio: audio.EncodePCM16(make([]float32, 1200)), SampleRate: 24000}
	live.events <- domain.LiveEvent{Audio: audio.EncodePCM16(make([]float32, 4800)), SampleRate: 24000}
	live.events <- domain.LiveEvent{Transcript: "steady as she goes"}
	live.events <- domain.LiveEvent{Closed: true}

	waitFor(t, func() bool { return !ch.Live() })

	sink.mu.Lock()
	starts := append([]time.Time(nil), sink.starts...)
	sink.mu.Unlock()
	require.Len(t, starts, 3)
	assert.Equal(t, epoch, starts[0])
	assert.Equal(t, epoch.Add(100*time.Millisecond), starts[1])
	assert.Equal(t, epoch.Add(150*time.Millisecond), starts[2])

	text, visible := captions.Current()
	assert.True(t, visible)
	assert.Equal(t, "steady as she goes", text)
}

func TestChannelErrorCleansUpToIdle(t *testing.T) {
	sink := &countingSink{}
	live := newFakeLiveChannel()
	dialer := &fakeDialer{ch: live}

	ch, _ := newChannel(dialer, audio.NewSilentSource(), sink, time.Now)
	require.NoError(t, ch.Toggle(context.Background()))

	live.events <- domain.LiveEvent{Err: errors.New("stream reset")}
	waitFor(t, func() bool { return !ch.Live() })

	sink.mu.Lock()
	stops := sink.stops
	sink.mu.Unlock()
	assert.GreaterOrEqual(t, stops, 1, "in-flight playback is discarded on error")

	live.mu.Lock()
	assert.True(t, live.closed)
	live.mu.Unlock()
}

func TestMicrophoneDeniedStaysIdle(t *testing.T) {
	dialer := &fakeDialer{ch: newFakeLiveChannel()}
	ch, _ := newChannel(dialer, deniedSource{}, &countingSink{}, time.Now)

	err := ch.Toggle(context.Background())
	require.Error(t, err)
	assert.False(t, ch.Live())

	dialer.mu.Lock()
	assert.Equal(t, 0, dialer.calls, "no channel is dialed without a microphone")
	dialer.mu.Unlock()
}

func TestToggleTwiceReturnsToIdle(t *testing.T) {
	live := newFakeLiveChannel()
	dialer := &fakeDialer{ch: live}
	ch, _ := newChannel(dialer, audio.NewSilentSource(), &countingSink{}, time.Now)

	var states []bool
	var mu sync.Mutex
	ch.SetOnState(func(l bool) {
		mu.Lock()
		states = append(states, l)
		mu.Unlock()
	})

	require.NoError(t, ch.Toggle(context.Background()))
	require.True(t, ch.Live())
	require.NoError(t, ch.Toggle(context.Background()))
	waitFor(t, func() bool { return !ch.Live() })

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(states), 2)
	assert.True(t, states[0])
	assert.False(t, states[len(states)-1])
}

func TestConcurrentTogglesOpenOneSession(t *testing.T) {
	dialer := newGatedDialer()
	ch, _ := newChannel(dialer, audio.NewSilentSource(), &countingSink{}, time.Now)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ch.Toggle(context.Background())
		}()
	}

	// Let both toggles reach the dialer before it answers.
	time.Sleep(20 * time.Millisecond)
	close(dialer.release)
	wg.Wait()

	dialer.mu.Lock()
	calls := dialer.calls
	dialer.mu.Unlock()
	require.Equal(t, 1, calls, "the second toggle must not dial a second session")
	require.True(t, ch.Live())

	ch.Stop()
	waitFor(t, func() bool { return !ch.Live() })

	dialer.mu.Lock()
	defer dialer.mu.Unlock()
	for _, c := range dialer.chs {
		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()
		assert.True(t, closed, "no live session survives Stop")
	}
}

func TestStopWaitsForCapturePump(t *testing.T) {
	live := newFakeLiveChannel()
	dialer := &fakeDialer{ch: live}
	frames := make([][]float32, 1000)
	for i := range frames {
		frames[i] = make([]float32, 160)
	}
	source := &framedSource{frames: frames, rate: 16000}

	ch, _ := newChannel(dialer, source, &countingSink{}, time.Now)
	require.NoError(t, ch.Toggle(context.Background()))
	waitFor(t, func() bool { return live.sentFrames() > 0 })

	ch.Stop()

	sent := live.sentFrames()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, sent, live.sentFrames(), "capture has exited by the time Stop returns")
}

func TestCaptureResampledAndForwarded(t *testing.T) {
	live := newFakeLiveChannel()
	dialer := &fakeDialer{ch: live}
	source := &framedSource{
		frames: [][]float32{make([]float32, 960), make([]float32, 960)},
		rate:   48000,
	}

	ch, _ := newChannel(dialer, source, &countingSink{}, time.Now)
	require.NoError(t, ch.Toggle(context.Background()))

	waitFor(t, func() bool { return live.sentFrames() == 2 })

	live.mu.Lock()
	frameLen := len(live.sent[0])
	live.mu.Unlock()
	// 960 samples at 48kHz resampled to 16kHz = 320 samples = 640 bytes PCM16.
	assert.Equal(t, 640, frameLen)

	ch.Stop()
	waitFor(t, func() bool { return !ch.Live() })
}
