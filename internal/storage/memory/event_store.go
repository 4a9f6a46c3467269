package memory

import (
	"context"
	"sync"

	"launchpool/internal/domain"
	"launchpool/internal/storage"
)

// EventStore is an in-memory implementation of storage.EventStore.
type EventStore struct {
	mu     sync.RWMutex
	events []*domain.PoolEvent
	byID   map[string]struct{}
}

// NewEventStore creates a new in-memory event journal.
func NewEventStore() *EventStore {
	return &EventStore{byID: make(map[string]struct{})}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

// Append adds one event. Returns ErrDuplicateKey if the event id exists.
func (s *EventStore) Append(_ context.Context, e *domain.PoolEvent) error {
	if e == nil || e.EventID == "" {
		return storage.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[e.EventID]; exists {
		return storage.ErrDuplicateKey
	}
	eventCopy := *e
	s.events = append(s.events, &eventCopy)
	s.byID[e.EventID] = struct{}{}
	return nil
}

// List returns events with sequence > since, ordered by sequence ASC.
func (s *EventStore) List(_ context.Context, since uint64, limit int) ([]*domain.PoolEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PoolEvent
	for _, e := range s.events {
		if e.Sequence <= since {
			continue
		}
		eventCopy := *e
		result = append(result, &eventCopy)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}
