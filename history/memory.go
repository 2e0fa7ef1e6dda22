package history

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps history in process; suitable for a single instance and tests
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string][]uint
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]uint)}
}

func (s *MemoryStore) Record(_ context.Context, userID string, productID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := slices.DeleteFunc(s.items[userID], func(id uint) bool { return id == productID })
	list = append([]uint{productID}, list...)
	if len(list) > MaxItems {
		list = list[:MaxItems]
	}
	s.items[userID] = list
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, userID string, n int) ([]uint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.items[userID]
	n = min(clampN(n), len(list))
	return slices.Clone(list[:n]), nil
}

func (s *MemoryStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, userID)
	return nil
}
