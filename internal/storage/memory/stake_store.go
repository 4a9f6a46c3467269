package memory

import (
	"context"
	"sort"
	"sync"

	"launchpool/internal/domain"
	"launchpool/internal/storage"
)

// StakeStore is an in-memory implementation of storage.StakeStore.
type StakeStore struct {
	mu   sync.RWMutex
	data map[domain.Address]*domain.StakeRecord
}

// NewStakeStore creates a new in-memory stake store.
func NewStakeStore() *StakeStore {
	return &StakeStore{
		data: make(map[domain.Address]*domain.StakeRecord),
	}
}

// Compile-time interface check.
var _ storage.StakeStore = (*StakeStore)(nil)

// Upsert writes the record keyed by owner.
func (s *StakeStore) Upsert(_ context.Context, r *domain.StakeRecord) error {
	if r == nil || r.Owner.IsZero() {
		return storage.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[r.Owner] = r.Clone()
	return nil
}

// Get returns the record for owner, or ErrNotFound.
func (s *StakeStore) Get(_ context.Context, owner domain.Address) (*domain.StakeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[owner]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return r.Clone(), nil
}

// List returns every record, ordered by first deposit time ASC.
func (s *StakeStore) List(_ context.Context) ([]*domain.StakeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.StakeRecord, 0, len(s.data))
	for _, r := range s.data {
		result = append(result, r.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].FirstDepositTime == result[j].FirstDepositTime {
			return result[i].Owner < result[j].Owner
		}
		return result[i].FirstDepositTime < result[j].FirstDepositTime
	})
	return result, nil
}
