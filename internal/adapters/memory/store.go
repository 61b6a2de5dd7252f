package memory

import (
	"context"
	"slices"
	"sync"
)

// FlatStore keeps values in process memory. Contents are lost on restart.
type FlatStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewFlatStore() *FlatStore {
	return &FlatStore{items: map[string][]byte{}}
}

func (s *FlatStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.items[key]
	return slices.Clone(raw), ok, nil
}

func (s *FlatStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = slices.Clone(value)
	return nil
}
