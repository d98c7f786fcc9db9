package domain

import "time"

type ProjectID string
type SessionID string
type MessageID string

type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "assistant"
)

// Screen identifies one of the dashboard screens the assistant can navigate to.
type Screen string

const (
	ScreenHome     Screen = "HOME"
	ScreenSkills   Screen = "SKILLS"
	ScreenAnalysis Screen = "ANALYSIS"
	ScreenExplore  Screen = "EXPLORE"
	ScreenCalendar Screen = "CALENDAR"
)

// ParseScreen maps a screen token to a Screen. An unknown token reports
// ok=false; it is not an error, the caller simply drops it.
func ParseScreen(s string) (Screen, bool) {
	switch Screen(s) {
	case ScreenHome, ScreenSkills, ScreenAnalysis, ScreenExplore, ScreenCalendar:
		return Screen(s), true
	default:
		return "", false
	}
}

type Timestamp = time.Time

// Persona is a named voice/tone configuration. VoiceName is the prebuilt
// synthesis voice the speech service expects.
type Persona struct {
	Name        string
	Description string
	Tone        string
	VoiceName   string
}

var Personas = []Persona{
	{Name: "Zephyr", Description: "Grounded and steady. Strategic reflection.", Tone: "Calm, patient.", VoiceName: "Zephyr"},
	{Name: "Puck", Description: "Energetic and playful. Creative risk-taking.", Tone: "Witty, encouraging.", VoiceName: "Puck"},
	{Name: "Charon", Description: "Stoic and direct. Direct feedback.", Tone: "Stoic, serious.", VoiceName: "Charon"},
	{Name: "Kore", Description: "Warm, empathetic, professional.", Tone: "Empathetic, warm.", VoiceName: "Kore"},
	{Name: "Fenrir", Description: "Analytical and piercing. Logic-focused.", Tone: "Analytical, precise.", VoiceName: "Fenrir"},
}

// PersonaByName falls back to Kore, the default companion voice.
func PersonaByName(name string) Persona {
	for _, p := range Personas {
		if p.Name == name {
			return p
		}
	}
	return Personas[3]
}
