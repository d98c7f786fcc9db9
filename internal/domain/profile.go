package domain

import "time"

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

type ProficiencyLevel string

const (
	LevelBeginner     ProficiencyLevel = "Beginner"
	LevelIntermediate ProficiencyLevel = "Intermediate"
	LevelAdvanced     ProficiencyLevel = "Advanced"
)

// Skill is one entry in the user's skill map.
type Skill struct {
	Name  string
	Level ProficiencyLevel
	Score int
}

// Task is one checklist item on the home screen.
type Task struct {
	ID        string
	Label     string
	Completed bool
	Type      string // "Task", "Schedule" or "Reminder"
	Priority  Priority
	Time      string
	CreatedAt time.Time
}

// CalendarEvent is one entry on the calendar screen.
type CalendarEvent struct {
	ID          string
	Title       string
	Date        string // YYYY-MM-DD
	Time        string // HH:MM
	Description string
	Type        string
	Priority    Priority
	Color       string
	HasAlarm    bool
}

// UserProfile is the mutable career profile. It is owned by the host
// application; the conversational core only touches it through update
// callbacks, never directly.
type UserProfile struct {
	Name        string
	IsNewUser   bool
	Goals       []string
	Skills      []Skill
	TargetRole  string
	WeeklyFocus string
	NextStep    string
	Checklist   []Task
	Events      []CalendarEvent
}

// ProfilePatch is a shallow-merge update: nil fields are untouched, non-nil
// fields replace the corresponding profile field wholesale.
type ProfilePatch struct {
	Name        *string
	IsNewUser   *bool
	TargetRole  *string
	WeeklyFocus *string
	NextStep    *string
	Goals       *[]string
	Skills      *[]Skill
	Checklist   *[]Task
	Events      *[]CalendarEvent
}

// AppSettings holds the user-configurable toggles. Flag names mirror the
// SET_UI command grammar tokens.
type AppSettings struct {
	HighContrast    bool
	LargerText      bool
	ReduceMotion    bool
	VoiceGuidance   bool
	VoicePinned     bool
	NightVision     bool
	ShowCaptions    bool
	ShowTranscript  bool
	AutoSpeak       bool
	IsMuted         bool
	ThinkingMode    bool
	SearchGrounding bool
	SpeechSpeed     float64
	Voice           string // persona name
}

// DefaultSettings matches a fresh install: captions and auto-speak on,
// everything else off, Kore voice.
func DefaultSettings() AppSettings {
	return AppSettings{
		ShowCaptions: true,
		AutoSpeak:    true,
		SpeechSpeed:  1.0,
		Voice:        "Kore",
	}
}
