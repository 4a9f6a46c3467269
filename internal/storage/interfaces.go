// Package storage defines the persistence interfaces for pool state,
// stake records, and the notification journal. The engine is authoritative
// in memory; stores hold the durable snapshot loaded at construction.
package storage

import (
	"context"

	"launchpool/internal/domain"
)

// PoolStateStore persists the singleton pool state.
type PoolStateStore interface {
	// Save writes the snapshot, replacing any previous one.
	Save(ctx context.Context, s *domain.PoolState) error

	// Load returns the snapshot, or ErrNotFound if none was saved yet.
	Load(ctx context.Context) (*domain.PoolState, error)
}

// StakeStore persists per-participant stake records.
type StakeStore interface {
	// Upsert writes the record keyed by owner.
	Upsert(ctx context.Context, r *domain.StakeRecord) error

	// Get returns the record for owner, or ErrNotFound.
	Get(ctx context.Context, owner domain.Address) (*domain.StakeRecord, error)

	// List returns every record, ordered by first deposit time ASC.
	List(ctx context.Context) ([]*domain.StakeRecord, error)
}

// EventStore is the append-only notification journal.
type EventStore interface {
	// Append adds one event. Returns ErrDuplicateKey if the event id
	// already exists: the journal is append-only.
	Append(ctx context.Context, e *domain.PoolEvent) error

	// List returns events with sequence > since, ordered by sequence ASC,
	// at most limit entries (0 = no limit).
	List(ctx context.Context, since uint64, limit int) ([]*domain.PoolEvent, error)
}
