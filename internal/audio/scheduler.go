package audio

import (
	"io"
	"sync"
	"time"
)

// Sink is the playback device boundary. PlayAt queues samples to start at a
// given instant; implementations must not block the caller for the duration
// of playback.
type Sink interface {
	PlayAt(samples []float32, sampleRate int, at time.Time)
	// StopAll discards every queued or playing buffer.
	StopAll()
}

// Scheduler lines up incoming frames back-to-back on a monotonic clock: each
// frame starts at the later of "now" and "end of the previous frame", so
// output is gapless and in order no matter how irregularly frames arrive off
// the network.
type Scheduler struct {
	sink Sink
	now  func() time.Time

	mu   sync.Mutex
	next time.Time
}

func NewScheduler(sink Sink) *Scheduler {
	return &Scheduler{sink: sink, now: time.Now}
}

// NewSchedulerWithClock injects the clock, for tests.
func NewSchedulerWithClock(sink Sink, now func() time.Time) *Scheduler {
	return &Scheduler{sink: sink, now: now}
}

// Schedule queues one frame and returns its start time.
func (s *Scheduler) Schedule(samples []float32, sampleRate int) time.Time {
	duration := time.Duration(float64(len(samples)) / float64(sampleRate) * float64(time.Second))

	s.mu.Lock()
	start := s.now()
	if s.next.After(start) {
		start = s.next
	}
	s.next = start.Add(duration)
	s.mu.Unlock()

	s.sink.PlayAt(samples, sampleRate, start)
	return start
}

// Flush discards all in-flight playback and resets the timeline.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	s.next = time.Time{}
	s.mu.Unlock()
	s.sink.StopAll()
}

// NullSink swallows audio. Used when no output device is wired up.
type NullSink struct{}

func (NullSink) PlayAt([]float32, int, time.Time) {}
func (NullSink) StopAll()                         {}

// WriterSink streams scheduled frames as PCM16 to an io.Writer, e.g. a pipe
// into an external player. Frames are written in scheduling order; pacing is
// left to the consumer.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) PlayAt(samples []float32, _ int, _ time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.w.Write(EncodePCM16(samples))
}

func (s *WriterSink) StopAll() {}
