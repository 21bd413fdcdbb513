package store

import (
	"context"
	"sync"

	"loam.dev/pkg/store/storedefs"
)

// MemStore is a Store kept in memory. It is useful in tests and for
// applications that do not need persistence.
type MemStore struct {
	mu     sync.RWMutex
	items  map[string]string
	closed bool
}

var _ storedefs.Store = (*MemStore)(nil)

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{items: map[string]string{}}
}

func (s *MemStore) GetItem(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, storedefs.ErrClosed
	}
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *MemStore) SetItem(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storedefs.ErrClosed
	}
	s.items[key] = value
	return nil
}

func (s *MemStore) DelItem(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storedefs.ErrClosed
	}
	delete(s.items, key)
	return nil
}

func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
