package assistant

import (
	"context"
	"time"

	"github.com/auralabs/lyra/internal/domain"
	"github.com/auralabs/lyra/internal/observability"
)

// response is the unit flowing through the pipeline: the raw reply (stored in
// the transcript verbatim) and its stripped form (shown and spoken).
type response struct {
	Raw     string
	Clean   string
	Sources []domain.Citation
}

// effect is one side effect of an assistant response. Effects run in
// sequence but are independent: caption display, transcript append and
// speech each happen for every response regardless of the others.
type effect interface {
	Name() string
	// Critical effects return their error; optional ones swallow it.
	Apply(ctx context.Context, r *response) error
	Critical() bool
}

// runPipeline executes the effects in order. A failed optional effect is
// logged and skipped; a failed critical effect aborts with its error.
func runPipeline(ctx context.Context, effects []effect, r *response) error {
	log := observability.LoggerFromContext(ctx)

	for _, e := range effects {
		start := time.Now()
		err := e.Apply(ctx, r)
		elapsed := time.Since(start)

		if err != nil {
			if e.Critical() {
				log.Error("response effect failed", "effect", e.Name(), "error", err)
				return err
			}
			log.Debug("response effect skipped", "effect", e.Name(), "error", err)
			continue
		}
		log.Debug("response effect done", "effect", e.Name(), "elapsed_ms", elapsed.Milliseconds())
	}
	return nil
}

type captionEffect struct {
	captions *Captions
}

func (captionEffect) Name() string   { return "caption" }
func (captionEffect) Critical() bool { return false }
func (e captionEffect) Apply(_ context.Context, r *response) error {
	e.captions.Set(r.Clean)
	return nil
}

type transcriptEffect struct {
	svc *Service
}

func (transcriptEffect) Name() string   { return "transcript" }
func (transcriptEffect) Critical() bool { return true }
func (e transcriptEffect) Apply(ctx context.Context, r *response) error {
	_, err := e.svc.ws.AppendMessage(ctx, &domain.Message{
		SessionID: e.svc.ws.ActiveSessionID(),
		Role:      domain.RoleAgent,
		Text:      r.Raw,
		Sources:   r.Sources,
	})
	return err
}

type speechEffect struct {
	svc *Service
}

func (speechEffect) Name() string   { return "speech" }
func (speechEffect) Critical() bool { return false }
func (e speechEffect) Apply(ctx context.Context, r *response) error {
	settings := e.svc.settings()
	if !settings.AutoSpeak || settings.IsMuted {
		return nil
	}
	e.svc.speaker.Speak(ctx, r.Clean)
	return nil
}
