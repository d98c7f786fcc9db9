package domain

// Project groups related conversation threads. Projects are created by
// explicit user action and are never deleted within a run.
type Project struct {
	ID        ProjectID
	Name      string
	CreatedAt Timestamp
}

// Session is one conversation thread inside a project. A session with
// ParentSessionID set is a branch: it was seeded with the ordered prefix of
// its parent's messages up to and including ForkMessageID, and diverges
// independently from there.
type Session struct {
	ID        SessionID
	ProjectID ProjectID
	Title     string
	CreatedAt Timestamp
	UpdatedAt Timestamp

	ParentSessionID SessionID
	ForkMessageID   MessageID
}

// IsBranch reports whether the session was forked from another thread.
func (s *Session) IsBranch() bool {
	return s.ParentSessionID != ""
}

// Citation is one grounding source attached to an assistant reply.
type Citation struct {
	Title string
	URI   string
}

// Message is a single timeline entry. Messages are immutable once appended;
// corrections happen by branching a new session, never by editing.
type Message struct {
	ID        MessageID
	SessionID SessionID
	Role      Role
	Text      string
	CreatedAt Timestamp
	Sources   []Citation
}
