package llm

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/auralabs/lyra/internal/domain"
	"google.golang.org/genai"
)

// Connect implements domain.LiveDialer: it opens a realtime audio session and
// adapts its server messages into the domain event stream.
func (c *Client) Connect(ctx context.Context, cfg domain.LiveConfig) (domain.LiveChannel, error) {
	lc := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: cfg.Voice},
			},
		},
	}
	if cfg.TranscribeOutput {
		lc.OutputAudioTranscription = &genai.AudioTranscriptionConfig{}
	}

	session, err := c.client.Live.Connect(ctx, c.cfg.LiveModel, lc)
	if err != nil {
		return nil, fmt.Errorf("live connect: %w", err)
	}

	ls := &liveSession{
		session: session,
		events:  make(chan domain.LiveEvent, 16),
	}
	go ls.receive()
	return ls, nil
}

type liveSession struct {
	session *genai.Session
	events  chan domain.LiveEvent

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func (l *liveSession) SendAudio(frame []byte, mimeType string) error {
	return l.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{Data: frame, MIMEType: mimeType},
	})
}

func (l *liveSession) Events() <-chan domain.LiveEvent { return l.events }

func (l *liveSession) Close() error {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		l.closeErr = l.session.Close()
	})
	return l.closeErr
}

// receive pumps server messages into the event channel until the session
// ends. A receive error after a local Close is the expected shutdown path
// and surfaces as a plain Closed event.
func (l *liveSession) receive() {
	defer close(l.events)
	for {
		msg, err := l.session.Receive()
		if err != nil {
			if l.closed.Load() {
				l.events <- domain.LiveEvent{Closed: true}
			} else {
				l.events <- domain.LiveEvent{Err: fmt.Errorf("live receive: %w", err)}
			}
			return
		}
		sc := msg.ServerContent
		if sc == nil {
			continue
		}
		if sc.ModelTurn != nil {
			for _, part := range sc.ModelTurn.Parts {
				if part.InlineData == nil || len(part.InlineData.Data) == 0 {
					continue
				}
				l.events <- domain.LiveEvent{
					Audio:      part.InlineData.Data,
					SampleRate: parsePCMRate(part.InlineData.MIMEType, ttsSampleRate),
				}
			}
		}
		if sc.OutputTranscription != nil && sc.OutputTranscription.Text != "" {
			l.events <- domain.LiveEvent{Transcript: sc.OutputTranscription.Text}
		}
	}
}
