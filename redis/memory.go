package redis

import (
	"context"
	"sync"

	"github.com/safein/safein-server/daterange"
)

// MemoryFilterStore is a FilterStore for tests and for running without Redis.
type MemoryFilterStore struct {
	mu    sync.Mutex
	items map[string]daterange.Snapshot
}

func NewMemoryFilterStore() *MemoryFilterStore {
	return &MemoryFilterStore{items: make(map[string]daterange.Snapshot)}
}

func (s *MemoryFilterStore) Load(_ context.Context, key FilterKey) (daterange.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[key.String()], nil
}

func (s *MemoryFilterStore) Save(_ context.Context, key FilterKey, snap daterange.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap.Days = nil
	s.items[key.String()] = snap
	return nil
}
