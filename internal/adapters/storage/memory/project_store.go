package memory

import (
	"sort"
	"sync"

	"github.com/auralabs/lyra/internal/domain"
)

// ProjectStore is an in-memory implementation of domain.ProjectStore. All
// workspace state is process-lifetime only; there is no persistent backend.
type ProjectStore struct {
	mu       sync.RWMutex
	projects map[domain.ProjectID]*domain.Project
}

func NewProjectStore() *ProjectStore {
	return &ProjectStore{
		projects: make(map[domain.ProjectID]*domain.Project),
	}
}

func (s *ProjectStore) CreateProject(p *domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.projects[p.ID]; exists {
		return domain.ErrProjectExists
	}

	cp := *p
	s.projects[p.ID] = &cp
	return nil
}

func (s *ProjectStore) GetProject(id domain.ProjectID) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}

	cp := *p
	return &cp, nil
}

func (s *ProjectStore) RenameProject(id domain.ProjectID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return domain.ErrProjectNotFound
	}

	p.Name = name
	return nil
}

// ListProjects returns all projects ordered by creation time.
func (s *ProjectStore) ListProjects() ([]*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Project, 0, len(s.projects))
	for _, p := range s.projects {
		cp := *p
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}
