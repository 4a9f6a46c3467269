package memory

import (
	"context"
	"sync"

	"launchpool/internal/domain"
	"launchpool/internal/storage"
)

// PoolStateStore is an in-memory implementation of storage.PoolStateStore.
type PoolStateStore struct {
	mu    sync.RWMutex
	state *domain.PoolState
}

// NewPoolStateStore creates a new in-memory pool state store.
func NewPoolStateStore() *PoolStateStore {
	return &PoolStateStore{}
}

// Compile-time interface check.
var _ storage.PoolStateStore = (*PoolStateStore)(nil)

// Save writes the snapshot, replacing any previous one.
func (s *PoolStateStore) Save(_ context.Context, st *domain.PoolState) error {
	if st == nil {
		return storage.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to prevent external mutation
	stateCopy := *st
	s.state = &stateCopy
	return nil
}

// Load returns the snapshot, or ErrNotFound if none was saved yet.
func (s *PoolStateStore) Load(_ context.Context) (*domain.PoolState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == nil {
		return nil, storage.ErrNotFound
	}
	stateCopy := *s.state
	return &stateCopy, nil
}
