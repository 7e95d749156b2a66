package dedup

import (
	"context"
	"sync"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps a private copy of the last persisted set.
type MemoryStore struct {
	mu        sync.Mutex
	set       *Set
	persisted int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{set: NewSet()}
}

func (s *MemoryStore) Load(ctx context.Context) (*Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Clone(), nil
}

func (s *MemoryStore) Persist(ctx context.Context, set *Set) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = set.Clone()
	s.persisted++
	return nil
}

// PersistCount reports how many times Persist was called.
func (s *MemoryStore) PersistCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persisted
}
