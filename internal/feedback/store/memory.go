package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/hashmap-kz/slackrep/internal/feedback/model"
)

// MemoryStore keeps entries in process memory. Suitable for single-node
// setups and tests; entries do not survive a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]model.Entry
}

var _ Store = &MemoryStore{}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[uuid.UUID]model.Entry),
	}
}

func (s *MemoryStore) List(_ context.Context) ([]model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Add(_ context.Context, e *model.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.ID] = *e
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

func (s *MemoryStore) Close() {}
