// Package voice runs the realtime bidirectional audio channel: microphone
// frames out, streamed speech and transcript fragments in.
package voice

import (
	"context"
	"fmt"
	"sync"

	"github.com/auralabs/lyra/internal/app/assistant"
	"github.com/auralabs/lyra/internal/audio"
	"github.com/auralabs/lyra/internal/domain"
	"github.com/auralabs/lyra/internal/observability"
)

// serviceInputRate is the capture rate the streaming service expects.
const serviceInputRate = 16000

const inputMimeType = "audio/pcm;rate=16000"

// Channel toggles between IDLE and LIVE. While live, capture and playback run
// on independent goroutines: mic frames are forwarded as they are produced,
// inbound frames are lined up gaplessly by the playback scheduler, and
// neither side ever waits on the other. Channel errors are non-fatal; they
// drive the same cleanup as an explicit stop, with no retry.
type Channel struct {
	dialer   domain.LiveDialer
	source   audio.Source
	sched    *audio.Scheduler
	captions *assistant.Captions
	voice    func() string // persona name
	onState  func(live bool)

	mu       sync.Mutex
	run      *liveRun
	starting bool
}

type liveRun struct {
	ch     domain.LiveChannel
	cancel context.CancelFunc
	done   sync.Once
	wg     sync.WaitGroup
}

func NewChannel(
	dialer domain.LiveDialer,
	source audio.Source,
	sched *audio.Scheduler,
	captions *assistant.Captions,
	voice func() string,
) *Channel {
	return &Channel{
		dialer:   dialer,
		source:   source,
		sched:    sched,
		captions: captions,
		voice:    voice,
	}
}

// SetOnState registers the live/idle listener the host renders from.
func (c *Channel) SetOnState(fn func(live bool)) {
	c.onState = fn
}

// Live reports whether the channel is currently open.
func (c *Channel) Live() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.run != nil
}

// Toggle flips between IDLE and LIVE. A failure to acquire the microphone or
// open the channel leaves the state IDLE; the returned error is for logging
// only, no persistent error state survives it. While a session is being
// opened, further toggles are no-ops: at most one live session ever exists.
func (c *Channel) Toggle(ctx context.Context) error {
	c.mu.Lock()
	if c.run != nil {
		run := c.run
		c.mu.Unlock()
		c.stop(run)
		return nil
	}
	if c.starting {
		c.mu.Unlock()
		return nil
	}
	c.starting = true
	c.mu.Unlock()

	return c.start(ctx)
}

// Stop forces the channel to IDLE. Safe to call repeatedly.
func (c *Channel) Stop() {
	c.mu.Lock()
	run := c.run
	c.mu.Unlock()
	if run != nil {
		c.stop(run)
	}
}

// start runs with the starting flag held; it is cleared on every exit path so
// the next Toggle can claim the transition.
func (c *Channel) start(ctx context.Context) error {
	defer func() {
		c.mu.Lock()
		c.starting = false
		c.mu.Unlock()
	}()

	log := observability.LoggerFromContext(ctx)

	runCtx, cancel := context.WithCancel(context.Background())

	frames, captureRate, err := c.source.Start(runCtx)
	if err != nil {
		cancel()
		log.Info("voice mode not activated", "error", err)
		return fmt.Errorf("acquiring microphone: %w", err)
	}

	persona := domain.PersonaByName(c.voice())
	ch, err := c.dialer.Connect(runCtx, domain.LiveConfig{
		Voice:            persona.VoiceName,
		TranscribeOutput: true,
	})
	if err != nil {
		c.source.Stop()
		cancel()
		log.Info("voice mode not activated", "error", err)
		return fmt.Errorf("opening live channel: %w", err)
	}

	run := &liveRun{ch: ch, cancel: cancel}

	c.mu.Lock()
	c.run = run
	c.mu.Unlock()

	if c.onState != nil {
		c.onState(true)
	}
	log.Info("voice mode live", "voice", persona.VoiceName, "capture_rate", captureRate)

	run.wg.Add(2)
	go c.capturePump(run, frames, captureRate)
	go c.receivePump(run)

	return nil
}

// capturePump forwards mic frames for as long as the source produces them.
// It never touches playback.
func (c *Channel) capturePump(run *liveRun, frames <-chan []float32, captureRate int) {
	defer run.wg.Done()

	for frame := range frames {
		resampled := audio.Resample(frame, captureRate, serviceInputRate)
		if len(resampled) == 0 {
			continue
		}
		if err := run.ch.SendAudio(audio.EncodePCM16(resampled), inputMimeType); err != nil {
			// The receive pump observes the channel failure and tears down.
			observability.Logger().Debug("live send failed", "error", err)
			return
		}
	}
}

// receivePump applies inbound events until the channel closes or errs, then
// tears the session down.
func (c *Channel) receivePump(run *liveRun) {
	// Done must run before the deferred stop: stop waits on the WaitGroup.
	defer c.stop(run)
	defer run.wg.Done()

	for ev := range run.ch.Events() {
		switch {
		case ev.Err != nil:
			observability.Logger().Info("live channel error, returning to idle", "error", ev.Err)
			return
		case ev.Closed:
			return
		}

		if len(ev.Audio) > 0 {
			rate := ev.SampleRate
			if rate <= 0 {
				rate = 24000
			}
			c.sched.Schedule(audio.DecodePCM16(ev.Audio), rate)
		}
		if ev.Transcript != "" {
			c.captions.Set(ev.Transcript)
		}
	}
}

// stop is the single cleanup path, shared by explicit toggles, channel
// errors and service-side closes.
func (c *Channel) stop(run *liveRun) {
	run.done.Do(func() {
		c.source.Stop()
		_ = run.ch.Close()
		run.cancel()
		run.wg.Wait()
		c.sched.Flush()

		c.mu.Lock()
		if c.run == run {
			c.run = nil
		}
		c.mu.Unlock()

		if c.onState != nil {
			c.onState(false)
		}
		observability.Logger().Info("voice mode idle")
	})
}
