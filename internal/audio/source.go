package audio

import (
	"context"
	"io"
	"sync"
)

// Source is the capture device boundary. Start returns a frame channel and
// the native sample rate; the channel closes when capture stops.
type Source interface {
	Start(ctx context.Context) (<-chan []float32, int, error)
	Stop()
}

// ReaderSource captures from an io.Reader of 16-bit little-endian mono PCM,
// e.g. a pipe from an external recorder. Frames are fixed-size chunks.
type ReaderSource struct {
	r          io.Reader
	sampleRate int
	frameSize  int

	mu      sync.Mutex
	stopped chan struct{}
}

func NewReaderSource(r io.Reader, sampleRate, frameSize int) *ReaderSource {
	return &ReaderSource{r: r, sampleRate: sampleRate, frameSize: frameSize}
}

func (s *ReaderSource) Start(ctx context.Context) (<-chan []float32, int, error) {
	s.mu.Lock()
	s.stopped = make(chan struct{})
	stopped := s.stopped
	s.mu.Unlock()

	frames := make(chan []float32)
	go func() {
		defer close(frames)
		buf := make([]byte, s.frameSize*2)
		for {
			n, err := io.ReadFull(s.r, buf)
			if n > 0 {
				frame := DecodePCM16(buf[:n])
				select {
				case frames <- frame:
				case <-stopped:
					return
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
			select {
			case <-stopped:
				return
			case <-ctx.Done():
				return
			default:
			}
		}
	}()
	return frames, s.sampleRate, nil
}

func (s *ReaderSource) Stop() {
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

// SilentSource produces no frames; it stands in for the microphone when the
// mock service is in use.
type SilentSource struct {
	mu      sync.Mutex
	stopped chan struct{}
}

func NewSilentSource() *SilentSource {
	return &SilentSource{}
}

func (s *SilentSource) Start(ctx context.Context) (<-chan []float32, int, error) {
	s.mu.Lock()
	s.stopped = make(chan struct{})
	stopped := s.stopped
	s.mu.Unlock()

	frames := make(chan []float32)
	go func() {
		defer close(frames)
		select {
		case <-stopped:
		case <-ctx.Done():
		}
	}()
	return frames, 16000, nil
}

func (s *SilentSource) Stop() {
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
