package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/auralabs/lyra/internal/domain"
)

// MockService is an offline stand-in for all three Gemini ports: text
// generation, speech synthesis, and live streaming. Keyword rules give the
// replies enough personality to drive the command grammar end to end.
type MockService struct {
	now func() time.Time
}

func NewMockService() *MockService {
	return &MockService{now: time.Now}
}

var mockNavKeywords = []struct {
	keyword string
	screen  string
}{
	{"skill", "SKILLS"},
	{"analysis", "ANALYSIS"},
	{"explore", "EXPLORE"},
	{"calendar", "CALENDAR"},
	{"home", "HOME"},
}

func (m *MockService) GenerateReply(
	_ context.Context,
	userMessage string,
	_ domain.ConversationContext,
) (*domain.Reply, error) {
	lower := strings.ToLower(userMessage)

	for _, nav := range mockNavKeywords {
		if strings.Contains(lower, nav.keyword) {
			return &domain.Reply{
				Text: fmt.Sprintf("Taking you there now. NAV_TO:%s", nav.screen),
			}, nil
		}
	}

	switch {
	case strings.Contains(lower, "schedule") || strings.Contains(lower, "meeting"):
		when := m.now().AddDate(0, 0, 1)
		return &domain.Reply{
			Text: fmt.Sprintf("Placed on your calendar. SCHEDULE_EVENT:Scheduled Session:%s:09:00",
				when.Format("2006-01-02")),
		}, nil
	case strings.Contains(lower, "task") || strings.Contains(lower, "remind"):
		return &domain.Reply{
			Text: "Logged to your checklist. ADD_TASK:Follow up on " + firstWords(userMessage, 4),
		}, nil
	case strings.Contains(lower, "contrast"):
		return &domain.Reply{Text: "High contrast is on. SET_UI:highContrast:true"}, nil
	case strings.Contains(lower, "caption"):
		return &domain.Reply{Text: "Captions enabled. SET_UI:showCaptions:true"}, nil
	case strings.Contains(lower, "mute"):
		return &domain.Reply{Text: "Muting audio output. SET_UI:isMuted:true"}, nil
	case strings.Contains(lower, "source") || strings.Contains(lower, "research"):
		return &domain.Reply{
			Text: "Here is a grounded summary of current guidance.",
			Sources: []domain.Citation{
				{Title: "Aura Reference Library", URI: "https://example.com/aura/reference"},
			},
		}, nil
	}

	return &domain.Reply{
		Text: "Understood. Your workspace is steady and nothing needs attention right now.",
	}, nil
}

func firstWords(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}

// Synthesize returns a short run of silence sized to the text so playback
// scheduling still has real durations to work with.
func (m *MockService) Synthesize(_ context.Context, text, _ string) (*domain.AudioPayload, error) {
	samples := len(text) * ttsSampleRate / 20
	if samples == 0 {
		return nil, fmt.Errorf("nothing to synthesize")
	}
	return &domain.AudioPayload{
		PCM:        make([]byte, samples*2),
		SampleRate: ttsSampleRate,
	}, nil
}

// Connect returns a scripted live channel: a greeting transcript, a beat of
// audio, then silence until the caller hangs up.
func (m *MockService) Connect(_ context.Context, cfg domain.LiveConfig) (domain.LiveChannel, error) {
	ch := &mockLiveChannel{events: make(chan domain.LiveEvent, 8)}
	if cfg.TranscribeOutput {
		ch.events <- domain.LiveEvent{Transcript: "Live channel open. I'm listening."}
	}
	ch.events <- domain.LiveEvent{
		Audio:      make([]byte, ttsSampleRate/2*2),
		SampleRate: ttsSampleRate,
	}
	return ch, nil
}

type mockLiveChannel struct {
	mu     sync.Mutex
	events chan domain.LiveEvent
	closed bool
}

func (c *mockLiveChannel) SendAudio([]byte, string) error { return nil }

func (c *mockLiveChannel) Events() <-chan domain.LiveEvent { return c.events }

func (c *mockLiveChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
	return nil
}
