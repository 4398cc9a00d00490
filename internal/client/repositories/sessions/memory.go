package sessions

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/fmdata/internal/client/models"
)

// MemoryStore keeps the session in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	session models.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, nil
}

func (s *MemoryStore) Save(_ context.Context, next models.Session) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !newer(next, s.session) {
		return false, nil
	}
	s.session = next
	return true, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = models.Session{}
	return nil
}

var _ Store = (*MemoryStore)(nil)
