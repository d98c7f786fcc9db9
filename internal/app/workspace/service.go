package workspace

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/auralabs/lyra/internal/domain"
	"github.com/auralabs/lyra/internal/observability"
)

const defaultProjectName = "Identity Synthesis"
const defaultThreadTitle = "Primary Thread"

// Service owns the project/thread graph of the assistant workspace and tracks
// which project and thread are active. Messages live in the message store;
// branching copies a prefix, it never mutates the source thread.
type Service struct {
	projects domain.ProjectStore
	sessions domain.SessionStore
	messages domain.MessageStore
	now      func() time.Time

	mu              sync.RWMutex
	activeProjectID domain.ProjectID
	activeSessionID domain.SessionID
}

func NewService(
	projects domain.ProjectStore,
	sessions domain.SessionStore,
	messages domain.MessageStore,
) (*Service, error) {
	s := &Service{
		projects: projects,
		sessions: sessions,
		messages: messages,
		now:      time.Now,
	}

	// One project always exists; a visited project always has a thread.
	p := &domain.Project{
		ID:        domain.ProjectID(newID()),
		Name:      defaultProjectName,
		CreatedAt: s.now(),
	}
	if err := projects.CreateProject(p); err != nil {
		return nil, err
	}
	s.activeProjectID = p.ID

	if err := s.EnsureDefaultSession(context.Background(), p.ID); err != nil {
		return nil, err
	}

	return s, nil
}

// CreateProject appends a new project and makes it active. An empty or
// whitespace-only name is a silent no-op, matching a cancelled prompt.
func (s *Service) CreateProject(ctx context.Context, name string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	log := observability.LoggerFromContext(ctx)

	p := &domain.Project{
		ID:        domain.ProjectID(newID()),
		Name:      name,
		CreatedAt: s.now(),
	}
	if err := s.projects.CreateProject(p); err != nil {
		log.Error("failed to create project", "error", err)
		return nil, err
	}

	log.Info("project created", "project_id", p.ID, "name", name)

	if err := s.SetActiveProject(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateSession appends an empty thread to the project and makes it active
// within that project.
func (s *Service) CreateSession(ctx context.Context, projectID domain.ProjectID, title string) (*domain.Session, error) {
	if _, err := s.projects.GetProject(projectID); err != nil {
		return nil, err
	}

	now := s.now()
	sess := &domain.Session{
		ID:        domain.SessionID(newID()),
		ProjectID: projectID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.CreateSession(sess); err != nil {
		observability.LoggerFromContext(ctx).Error("failed to create session", "error", err)
		return nil, err
	}

	s.mu.Lock()
	if s.activeProjectID == projectID {
		s.activeSessionID = sess.ID
	}
	s.mu.Unlock()

	observability.LoggerFromContext(ctx).Info("session created",
		"session_id", sess.ID,
		"project_id", projectID,
		"title", title)

	return sess, nil
}

// EnsureDefaultSession maintains the invariant that a visited project has at
// least one thread and one of them is active. It is idempotent: with a thread
// already present and active it does nothing.
func (s *Service) EnsureDefaultSession(ctx context.Context, projectID domain.ProjectID) error {
	existing, err := s.sessions.ListSessionsByProject(projectID)
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		_, err := s.CreateSession(ctx, projectID, defaultThreadTitle)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeProjectID != projectID {
		return nil
	}

	active := false
	for _, sess := range existing {
		if sess.ID == s.activeSessionID {
			active = true
			break
		}
	}
	if !active {
		s.activeSessionID = existing[0].ID
	}
	return nil
}

// Branch copies the source thread's prefix through messageID (inclusive) into
// a fresh thread and makes it active. The source is never mutated; the copied
// messages are independent records. domain.ErrMessageNotFound if messageID is
// not part of the source thread.
func (s *Service) Branch(ctx context.Context, sessionID domain.SessionID, messageID domain.MessageID) (*domain.Session, error) {
	src, err := s.sessions.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	log := observability.LoggerFromContext(ctx).With(
		"source_session_id", sessionID,
		"fork_message_id", messageID,
	)

	now := s.now()
	branch := &domain.Session{
		ID:              domain.SessionID(newID()),
		ProjectID:       src.ProjectID,
		Title:           "Branch from " + src.Title,
		CreatedAt:       now,
		UpdatedAt:       now,
		ParentSessionID: src.ID,
		ForkMessageID:   messageID,
	}

	// Copy before registering the session so a missing fork point leaves no
	// empty orphan thread behind.
	if _, err := s.messages.CloneThrough(src.ID, messageID, branch.ID); err != nil {
		log.Error("branch failed", "error", err)
		return nil, err
	}

	if err := s.sessions.CreateSession(branch); err != nil {
		log.Error("failed to create branch session", "error", err)
		return nil, err
	}

	s.mu.Lock()
	if s.activeProjectID == src.ProjectID {
		s.activeSessionID = branch.ID
	}
	s.mu.Unlock()

	log.Info("thread branched", "branch_session_id", branch.ID)

	return branch, nil
}

// RenameProject is a no-op when the new name trims to empty.
func (s *Service) RenameProject(ctx context.Context, id domain.ProjectID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return s.projects.RenameProject(id, name)
}

// RenameSession is a no-op when the new title trims to empty.
func (s *Service) RenameSession(ctx context.Context, id domain.SessionID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}

	sess, err := s.sessions.GetSession(id)
	if err != nil {
		return err
	}
	sess.Title = title
	sess.UpdatedAt = s.now()
	return s.sessions.UpdateSession(sess)
}

// SetActiveProject switches the active project and re-establishes the default
// thread invariant for it.
func (s *Service) SetActiveProject(ctx context.Context, id domain.ProjectID) error {
	if _, err := s.projects.GetProject(id); err != nil {
		return err
	}

	s.mu.Lock()
	s.activeProjectID = id
	s.activeSessionID = ""
	s.mu.Unlock()

	return s.EnsureDefaultSession(ctx, id)
}

// SetActiveSession activates a thread within its project.
func (s *Service) SetActiveSession(ctx context.Context, id domain.SessionID) error {
	sess, err := s.sessions.GetSession(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.activeProjectID = sess.ProjectID
	s.activeSessionID = sess.ID
	s.mu.Unlock()
	return nil
}

func (s *Service) ActiveProjectID() domain.ProjectID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeProjectID
}

func (s *Service) ActiveSessionID() domain.SessionID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeSessionID
}

func (s *Service) ActiveSession() (*domain.Session, error) {
	return s.sessions.GetSession(s.ActiveSessionID())
}

// AppendMessage fills in the message's ID and timestamp and appends it to its
// thread. Messages are immutable once appended.
func (s *Service) AppendMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	if msg.ID == "" {
		msg.ID = domain.MessageID(newID())
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now()
	}
	if err := s.messages.AppendMessage(msg); err != nil {
		observability.LoggerFromContext(ctx).Error("failed to append message", "error", err)
		return nil, err
	}
	return msg, nil
}

// History returns a thread's messages in append order.
func (s *Service) History(ctx context.Context, sessionID domain.SessionID) ([]*domain.Message, error) {
	return s.messages.History(sessionID)
}

// Projects lists all projects by creation order.
func (s *Service) Projects() ([]*domain.Project, error) {
	return s.projects.ListProjects()
}

// ProjectSessions lists a project's threads by creation order.
func (s *Service) ProjectSessions(projectID domain.ProjectID) ([]*domain.Session, error) {
	return s.sessions.ListSessionsByProject(projectID)
}

func newID() string {
	return uuid.NewString()
}
