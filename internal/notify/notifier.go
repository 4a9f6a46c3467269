// Package notify fans committed pool events out to the durable journal
// and to live websocket observers. Notifiers run after an operation has
// committed and must never call back into the engine.
package notify

import (
	"context"
	"log"

	"launchpool/internal/domain"
	"launchpool/internal/pool"
	"launchpool/internal/storage"
)

// Journal appends every event to an EventStore. Append failures are
// logged, not propagated: the operation that produced the event has
// already committed against custody, and the deterministic event id lets
// a re-emission backfill the journal idempotently.
type Journal struct {
	store  storage.EventStore
	logger *log.Logger
}

// NewJournal creates a journal notifier.
func NewJournal(store storage.EventStore, logger *log.Logger) *Journal {
	return &Journal{store: store, logger: logger}
}

// Emit implements pool.Notifier.
func (j *Journal) Emit(ctx context.Context, e domain.PoolEvent) {
	if err := j.store.Append(ctx, &e); err != nil {
		if j.logger != nil {
			j.logger.Printf("journal append %s seq=%d: %v", e.Type, e.Sequence, err)
		}
	}
}

// Multi fans one event out to several notifiers in order.
type Multi []pool.Notifier

// Emit implements pool.Notifier.
func (m Multi) Emit(ctx context.Context, e domain.PoolEvent) {
	for _, n := range m {
		n.Emit(ctx, e)
	}
}
