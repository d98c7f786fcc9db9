package domain

import "context"

// GenerateOptions toggles per-request service features.
type GenerateOptions struct {
	SearchGrounding bool
	ThinkingMode    bool
}

// Reply is what the core needs back from text generation: plain text plus an
// optional citation list. The command grammar operates purely on Text.
type Reply struct {
	Text    string
	Sources []Citation
}

// ConversationContext gives the generator minimal context about the thread.
type ConversationContext struct {
	SessionID SessionID
	ProjectID ProjectID
	Persona   Persona
	History   []*Message
	Options   GenerateOptions
}

// TextGenerator is the assistant text-generation service.
type TextGenerator interface {
	GenerateReply(ctx context.Context, userMessage string, convCtx ConversationContext) (*Reply, error)
}

// AudioPayload is raw synthesized speech: 16-bit little-endian mono PCM.
type AudioPayload struct {
	PCM        []byte
	SampleRate int
}

// SpeechSynthesizer renders a single utterance with the given prebuilt voice.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, voice string) (*AudioPayload, error)
}

// LiveEvent is one inbound event on a realtime channel. Exactly one of the
// audio/transcript/closed/err aspects is meaningful per event.
type LiveEvent struct {
	Audio      []byte // PCM16 little-endian mono, nil when absent
	SampleRate int
	Transcript string
	Closed     bool
	Err        error
}

// LiveChannel is an open bidirectional streaming session. SendAudio forwards
// one captured frame; Events delivers inbound events until the channel closes.
type LiveChannel interface {
	SendAudio(frame []byte, mimeType string) error
	Events() <-chan LiveEvent
	Close() error
}

// LiveConfig selects voice and transcription behavior for a live session.
type LiveConfig struct {
	Voice            string
	TranscribeOutput bool
}

// LiveDialer opens realtime streaming sessions to the assistant service.
type LiveDialer interface {
	Connect(ctx context.Context, cfg LiveConfig) (LiveChannel, error)
}

// ProjectStore defines project persistence.
type ProjectStore interface {
	CreateProject(p *Project) error
	GetProject(id ProjectID) (*Project, error)
	RenameProject(id ProjectID, name string) error
	ListProjects() ([]*Project, error)
}

// SessionStore defines session persistence.
type SessionStore interface {
	CreateSession(s *Session) error
	UpdateSession(s *Session) error
	GetSession(id SessionID) (*Session, error)
	ListSessionsByProject(projectID ProjectID) ([]*Session, error)
}

// MessageStore defines message persistence. Messages are an append-only
// ordered sequence per session.
type MessageStore interface {
	AppendMessage(m *Message) error
	// History returns the session's messages in append order. The returned
	// slice is the caller's to keep; mutating it does not affect the store.
	History(sessionID SessionID) ([]*Message, error)
	// CloneThrough copies src's ordered prefix up to and including the given
	// message into dst as independent records. ErrMessageNotFound if the
	// message is not part of src.
	CloneThrough(src SessionID, through MessageID, dst SessionID) ([]*Message, error)
}
