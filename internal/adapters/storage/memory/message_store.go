package memory

import (
	"sync"

	"github.com/auralabs/lyra/internal/domain"
)

// MessageStore is an in-memory implementation of domain.MessageStore. Each
// session owns an independent append-only slice, which is what makes branch
// isolation hold: appending to one session can never touch another.
type MessageStore struct {
	mu       sync.RWMutex
	messages map[domain.SessionID][]*domain.Message
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		messages: make(map[domain.SessionID][]*domain.Message),
	}
}

func (s *MessageStore) AppendMessage(msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *msg
	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], &cp)
	return nil
}

func (s *MessageStore) History(sessionID domain.SessionID) ([]*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[sessionID]
	out := make([]*domain.Message, len(msgs))
	for i, m := range msgs {
		cp := *m
		out[i] = &cp
	}
	return out, nil
}

// CloneThrough copies src's prefix through the given message into dst as new
// records re-homed to dst. The copy is by value: later appends to either
// session leave the other untouched.
func (s *MessageStore) CloneThrough(src domain.SessionID, through domain.MessageID, dst domain.SessionID) ([]*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.messages[src]
	idx := -1
	for i, m := range msgs {
		if m.ID == through {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, domain.ErrMessageNotFound
	}

	cloned := make([]*domain.Message, 0, idx+1)
	for _, m := range msgs[:idx+1] {
		cp := *m
		cp.SessionID = dst
		cp.Sources = append([]domain.Citation(nil), m.Sources...)
		cloned = append(cloned, &cp)
	}
	s.messages[dst] = append(s.messages[dst], cloned...)

	out := make([]*domain.Message, len(cloned))
	for i, m := range cloned {
		cp := *m
		out[i] = &cp
	}
	return out, nil
}
