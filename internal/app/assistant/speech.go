package assistant

import (
	"context"

	"github.com/auralabs/lyra/internal/audio"
	"github.com/auralabs/lyra/internal/domain"
	"github.com/auralabs/lyra/internal/observability"
)

// Speaker renders one utterance through the speech service and schedules it
// for playback. Speech is a non-critical enhancement: every failure in here
// (network, decode, playback) is logged and discarded, the conversation never
// notices.
type Speaker struct {
	synth domain.SpeechSynthesizer
	sched *audio.Scheduler
	voice func() string // persona name
}

func NewSpeaker(synth domain.SpeechSynthesizer, sched *audio.Scheduler, voice func() string) *Speaker {
	return &Speaker{synth: synth, sched: sched, voice: voice}
}

// Speak synthesizes and queues the text. It never returns an error.
func (s *Speaker) Speak(ctx context.Context, text string) {
	if s.synth == nil || text == "" {
		return
	}

	log := observability.LoggerFromContext(ctx)

	persona := domain.PersonaByName(s.voice())
	payload, err := s.synth.Synthesize(ctx, text, persona.VoiceName)
	if err != nil {
		log.Debug("speech synthesis failed, continuing silently", "error", err)
		return
	}
	if payload == nil || len(payload.PCM) == 0 {
		log.Debug("speech synthesis returned no audio")
		return
	}

	samples := audio.DecodePCM16(payload.PCM)
	rate := payload.SampleRate
	if rate <= 0 {
		rate = 24000
	}
	s.sched.Schedule(samples, rate)
}
