package state

import (
	"sync"

	"github.com/auralabs/lyra/internal/domain"
)

// SettingsStore holds the user-configurable toggles. SetFlag accepts the
// verbatim SET_UI names from the command grammar; names it does not know are
// ignored, never an error.
type SettingsStore struct {
	mu sync.RWMutex
	s  domain.AppSettings
}

func NewSettingsStore(s domain.AppSettings) *SettingsStore {
	return &SettingsStore{s: s}
}

func (s *SettingsStore) Get() domain.AppSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.s
}

// SetFlag applies one named boolean toggle.
func (s *SettingsStore) SetFlag(name string, value bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch name {
	case "highContrast":
		s.s.HighContrast = value
	case "largerText":
		s.s.LargerText = value
	case "reduceMotion":
		s.s.ReduceMotion = value
	case "voiceGuidance":
		s.s.VoiceGuidance = value
	case "voicePinned":
		s.s.VoicePinned = value
	case "nightVision":
		s.s.NightVision = value
	case "showCaptions":
		s.s.ShowCaptions = value
	case "showTranscript":
		s.s.ShowTranscript = value
	case "autoSpeak":
		s.s.AutoSpeak = value
	case "isMuted":
		s.s.IsMuted = value
	case "thinkingMode":
		s.s.ThinkingMode = value
	case "searchGrounding":
		s.s.SearchGrounding = value
	default:
		// unknown flags are dropped on purpose
	}
}

// SetVoice switches the active persona.
func (s *SettingsStore) SetVoice(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.s.Voice = domain.PersonaByName(name).Name
}
