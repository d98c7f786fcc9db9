package assistant_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auralabs/lyra/internal/adapters/storage/memory"
	"github.com/auralabs/lyra/internal/app/assistant"
	"github.com/auralabs/lyra/internal/app/command"
	"github.com/auralabs/lyra/internal/app/workspace"
	"github.com/auralabs/lyra/internal/audio"
	"github.com/auralabs/lyra/internal/domain"
	"github.com/auralabs/lyra/internal/state"
)

// scriptedGenerator returns queued replies in order; a reply may carry an
// error or block until released.
type scriptedGenerator struct {
	mu      sync.Mutex
	replies []scriptedReply
}

type scriptedReply struct {
	text    string
	sources []domain.Citation
	err     error
	gate    chan struct{}
}

func (g *scriptedGenerator) GenerateReply(ctx context.Context, _ string, _ domain.ConversationContext) (*domain.Reply, error) {
	g.mu.Lock()
	queued := len(g.replies) > 0
	var r scriptedReply
	if queued {
		r = g.replies[0]
		g.replies = g.replies[1:]
	}
	g.mu.Unlock()

	if !queued {
		return &domain.Reply{Text: "ok"}, nil
	}
	if r.gate != nil {
		<-r.gate
	}
	if r.err != nil {
		return nil, r.err
	}
	return &domain.Reply{Text: r.text, Sources: r.sources}, nil
}

type failingSynth struct{ calls int }

func (s *failingSynth) Synthesize(context.Context, string, string) (*domain.AudioPayload, error) {
	s.calls++
	return nil, errors.New("synthesis unavailable")
}

type fixture struct {
	svc      *assistant.Service
	ws       *workspace.Service
	captions *assistant.Captions
	profile  *state.ProfileStore
	settings *state.SettingsStore
	synth    *failingSynth
	screens  []domain.Screen
}

func newFixture(t *testing.T, gen domain.TextGenerator, captionTTL time.Duration) *fixture {
	t.Helper()

	ws, err := workspace.NewService(
		memory.NewProjectStore(),
		memory.NewSessionStore(),
		memory.NewMessageStore(),
	)
	require.NoError(t, err)

	f := &fixture{
		ws:       ws,
		captions: assistant.NewCaptions(captionTTL),
		profile:  state.NewProfileStore(domain.UserProfile{Name: "Ada"}),
		settings: state.NewSettingsStore(domain.DefaultSettings()),
		synth:    &failingSynth{},
	}

	applier := command.NewApplier(command.Host{
		Navigate:      func(s domain.Screen) { f.screens = append(f.screens, s) },
		SetFlag:       f.settings.SetFlag,
		Profile:       f.profile.Get,
		UpdateProfile: f.profile.Apply,
	})

	sched := audio.NewScheduler(audio.NullSink{})
	speaker := assistant.NewSpeaker(f.synth, sched, func() string { return f.settings.Get().Voice })

	f.svc = assistant.NewService(gen, ws, f.captions, speaker, applier, f.settings.Get)
	return f
}

func TestHandleResponseAppendsExactlyOneMessageDespiteSpeechFailure(t *testing.T) {
	f := newFixture(t, &scriptedGenerator{}, 0)

	err := f.svc.HandleResponse(context.Background(), "**Steady** progress.", nil)
	require.NoError(t, err)

	history, err := f.ws.History(context.Background(), f.ws.ActiveSessionID())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.RoleAgent, history[0].Role)
	assert.Equal(t, "**Steady** progress.", history[0].Text, "transcript keeps the raw text")
	assert.Equal(t, 1, f.synth.calls, "auto-speak attempted and its failure swallowed")

	caption, visible := f.captions.Current()
	assert.True(t, visible)
	assert.Equal(t, "Steady progress.", caption, "caption shows the stripped text")
}

func TestHandleResponseSkipsSpeechWhenMuted(t *testing.T) {
	f := newFixture(t, &scriptedGenerator{}, 0)
	f.settings.SetFlag("isMuted", true)

	require.NoError(t, f.svc.HandleResponse(context.Background(), "quiet", nil))
	assert.Equal(t, 0, f.synth.calls)
}

func TestCaptionDebounceSecondResponseWins(t *testing.T) {
	f := newFixture(t, &scriptedGenerator{}, 60*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, f.svc.HandleResponse(ctx, "first", nil))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, f.svc.HandleResponse(ctx, "second", nil))

	// Past the first caption's would-be expiry: its timer was canceled, the
	// second caption is still up.
	time.Sleep(50 * time.Millisecond)
	caption, visible := f.captions.Current()
	assert.True(t, visible)
	assert.Equal(t, "second", caption)

	// And the second one clears on its own schedule.
	time.Sleep(40 * time.Millisecond)
	_, visible = f.captions.Current()
	assert.False(t, visible)
}

func TestSendFallbackOnGenerationFailure(t *testing.T) {
	gen := &scriptedGenerator{replies: []scriptedReply{{err: errors.New("upstream down")}}}
	f := newFixture(t, gen, 0)

	require.NoError(t, f.svc.Send(context.Background(), "hello"))

	history, err := f.ws.History(context.Background(), f.ws.ActiveSessionID())
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.RoleUser, history[0].Role)
	assert.Equal(t, domain.RoleAgent, history[1].Role)
	assert.Contains(t, history[1].Text, "recalibrated your nodes", "fixed fallback line, never a raw error")
}

func TestSendAppliesDirectives(t *testing.T) {
	gen := &scriptedGenerator{replies: []scriptedReply{{
		text: "Scheduled. SCHEDULE_EVENT:Quarterly Review:2025-03-01:14:00\nNAV_TO:CALENDAR",
	}}}
	f := newFixture(t, gen, 0)

	require.NoError(t, f.svc.Send(context.Background(), "schedule a review"))

	events := f.profile.Get().Events
	require.Len(t, events, 1)
	assert.Equal(t, "Quarterly Review", events[0].Title)
	assert.Equal(t, "2025-03-01", events[0].Date)
	assert.Equal(t, "14:00", events[0].Time)
	assert.Equal(t, []domain.Screen{domain.ScreenCalendar}, f.screens)
}

func TestSendStoresCitations(t *testing.T) {
	gen := &scriptedGenerator{replies: []scriptedReply{{
		text:    "Grounded answer.",
		sources: []domain.Citation{{Title: "Go Blog", URI: "https://go.dev/blog"}},
	}}}
	f := newFixture(t, gen, 0)

	require.NoError(t, f.svc.Send(context.Background(), "look this up"))

	history, err := f.ws.History(context.Background(), f.ws.ActiveSessionID())
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Len(t, history[1].Sources, 1)
	assert.Equal(t, "Go Blog", history[1].Sources[0].Title)
}

func TestStaleReplyDiscarded(t *testing.T) {
	gate := make(chan struct{})
	gen := &scriptedGenerator{replies: []scriptedReply{
		{text: "slow reply", gate: gate},
		{text: "fast reply"},
	}}
	f := newFixture(t, gen, 0)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- f.svc.Send(ctx, "first question") }()

	// Let the slow send reach the generator before racing it.
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, f.svc.Send(ctx, "second question"))

	close(gate)
	require.NoError(t, <-done)

	history, err := f.ws.History(context.Background(), f.ws.ActiveSessionID())
	require.NoError(t, err)

	var agentTexts []string
	for _, m := range history {
		if m.Role == domain.RoleAgent {
			agentTexts = append(agentTexts, m.Text)
		}
	}
	assert.Equal(t, []string{"fast reply"}, agentTexts, "the superseded reply must not land")
}

func TestStripMarkup(t *testing.T) {
	in := "## Plan\n**Bold** and _sly_ `code` with __emphasis__ and *stars*"
	assert.Equal(t, " Plan\nBold and sly code with emphasis and stars", assistant.StripMarkup(in))
}
