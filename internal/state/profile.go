package state

import (
	"sync"

	"github.com/auralabs/lyra/internal/domain"
)

// ProfileStore holds the user's mutable career profile. It belongs to the
// host application; the conversational core reaches it only through the
// update callback, and every patch is applied atomically under the lock
// (last-write-wins for overlapping fields).
type ProfileStore struct {
	mu sync.RWMutex
	p  domain.UserProfile
}

func NewProfileStore(p domain.UserProfile) *ProfileStore {
	return &ProfileStore{p: p}
}

// Get returns a value copy of the profile. Slices are copied so callers can
// build "current plus one" updates without racing the store.
func (s *ProfileStore) Get() domain.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := s.p
	cp.Goals = append([]string(nil), s.p.Goals...)
	cp.Skills = append([]domain.Skill(nil), s.p.Skills...)
	cp.Checklist = append([]domain.Task(nil), s.p.Checklist...)
	cp.Events = append([]domain.CalendarEvent(nil), s.p.Events...)
	return cp
}

// Apply shallow-merges the patch: nil fields are untouched, non-nil fields
// replace their counterpart wholesale.
func (s *ProfileStore) Apply(patch domain.ProfilePatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.Name != nil {
		s.p.Name = *patch.Name
	}
	if patch.IsNewUser != nil {
		s.p.IsNewUser = *patch.IsNewUser
	}
	if patch.TargetRole != nil {
		s.p.TargetRole = *patch.TargetRole
	}
	if patch.WeeklyFocus != nil {
		s.p.WeeklyFocus = *patch.WeeklyFocus
	}
	if patch.NextStep != nil {
		s.p.NextStep = *patch.NextStep
	}
	if patch.Goals != nil {
		s.p.Goals = append([]string(nil), *patch.Goals...)
	}
	if patch.Skills != nil {
		s.p.Skills = append([]domain.Skill(nil), *patch.Skills...)
	}
	if patch.Checklist != nil {
		s.p.Checklist = append([]domain.Task(nil), *patch.Checklist...)
	}
	if patch.Events != nil {
		s.p.Events = append([]domain.CalendarEvent(nil), *patch.Events...)
	}
}
