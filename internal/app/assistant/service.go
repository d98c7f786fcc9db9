// Package assistant is the conversational core of the overlay: it turns user
// input into stored messages, assistant replies, captions, speech and command
// side effects.
package assistant

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/auralabs/lyra/internal/app/command"
	"github.com/auralabs/lyra/internal/app/workspace"
	"github.com/auralabs/lyra/internal/domain"
	"github.com/auralabs/lyra/internal/observability"
)

// State is the assistant's activity indicator.
type State string

const (
	StateIdle     State = "IDLE"
	StateThinking State = "THINKING"
	StateLive     State = "LIVE"
)

// fallbackReply keeps the conversation alive when text generation fails: the
// user always gets a conversational line, never a raw error.
const fallbackReply = "I've successfully updated your learning map and recalibrated your nodes. Everything is looking steady."

// historyWindow caps how much thread history rides along on each request.
const historyWindow = 20

// Service orchestrates one user turn end to end: append the user message,
// call the text generator, apply extracted directives, then run the response
// pipeline (caption, transcript, speech).
type Service struct {
	gen      domain.TextGenerator
	ws       *workspace.Service
	captions *Captions
	speaker  *Speaker
	applier  *command.Applier
	settings func() domain.AppSettings
	onState  func(State)

	// seq orders in-flight generation calls; replies that lose the race to a
	// newer Send are discarded instead of landing out of order.
	seq atomic.Uint64
}

func NewService(
	gen domain.TextGenerator,
	ws *workspace.Service,
	captions *Captions,
	speaker *Speaker,
	applier *command.Applier,
	settings func() domain.AppSettings,
) *Service {
	return &Service{
		gen:      gen,
		ws:       ws,
		captions: captions,
		speaker:  speaker,
		applier:  applier,
		settings: settings,
	}
}

// SetOnState registers the activity listener the host renders from.
func (s *Service) SetOnState(fn func(State)) {
	s.onState = fn
}

func (s *Service) setState(st State) {
	if s.onState != nil {
		s.onState(st)
	}
}

// Captions exposes the caption line, shared with the live voice channel.
func (s *Service) Captions() *Captions {
	return s.captions
}

// Send runs one user turn against the active thread. Generation failure
// degrades to the fallback line; the user message is stored either way.
func (s *Service) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	ctx = observability.WithRequestID(ctx, uuid.NewString())
	log := observability.LoggerFromContext(ctx).With("session_id", s.ws.ActiveSessionID())
	log.Info("user turn started")

	sessionID := s.ws.ActiveSessionID()
	if _, err := s.ws.AppendMessage(ctx, &domain.Message{
		SessionID: sessionID,
		Role:      domain.RoleUser,
		Text:      text,
	}); err != nil {
		return err
	}

	s.setState(StateThinking)
	seq := s.seq.Add(1)

	history, err := s.ws.History(ctx, sessionID)
	if err != nil {
		s.setState(StateIdle)
		return err
	}
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	settings := s.settings()
	convCtx := domain.ConversationContext{
		SessionID: sessionID,
		ProjectID: s.ws.ActiveProjectID(),
		Persona:   domain.PersonaByName(settings.Voice),
		History:   history,
		Options: domain.GenerateOptions{
			SearchGrounding: settings.SearchGrounding,
			ThinkingMode:    settings.ThinkingMode,
		},
	}

	reply, genErr := s.gen.GenerateReply(ctx, text, convCtx)

	// A newer Send was issued while this one was in flight: its reply owns
	// the thread now, this one is stale and must not land.
	if s.seq.Load() != seq {
		log.Info("stale reply discarded", "seq", seq)
		return nil
	}

	var replyText string
	var sources []domain.Citation
	switch {
	case genErr != nil:
		log.Error("text generation failed, using fallback", "error", genErr)
		replyText = fallbackReply
	case reply == nil || reply.Text == "":
		replyText = "I've processed your request."
	default:
		replyText = reply.Text
		sources = reply.Sources
	}

	s.applier.Apply(ctx, command.Extract(replyText))

	err = s.HandleResponse(ctx, replyText, sources)
	s.setState(StateIdle)
	if err != nil {
		return err
	}

	log.Info("user turn completed")
	return nil
}

// HandleResponse runs the response pipeline for one assistant reply: caption
// (stripped text, debounced auto-clear), transcript append (raw text, exactly
// one message), speech (stripped text, only when auto-speak is on and not
// muted, failures swallowed).
func (s *Service) HandleResponse(ctx context.Context, rawText string, sources []domain.Citation) error {
	r := &response{
		Raw:     rawText,
		Clean:   StripMarkup(rawText),
		Sources: sources,
	}
	effects := []effect{
		captionEffect{captions: s.captions},
		transcriptEffect{svc: s},
		speechEffect{svc: s},
	}
	return runPipeline(ctx, effects, r)
}
