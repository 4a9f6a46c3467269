package postgres

import (
	"context"
	"fmt"

	"launchpool/internal/domain"
	"launchpool/internal/storage"
)

// PoolStateStore implements storage.PoolStateStore using PostgreSQL.
// The snapshot lives in a single fixed row.
type PoolStateStore struct {
	pool *Pool
}

// NewPoolStateStore creates a new PoolStateStore.
func NewPoolStateStore(pool *Pool) *PoolStateStore {
	return &PoolStateStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PoolStateStore = (*PoolStateStore)(nil)

// Save writes the snapshot, replacing any previous one.
func (s *PoolStateStore) Save(ctx context.Context, st *domain.PoolState) error {
	if st == nil {
		return storage.ErrInvalidInput
	}
	query := `
		INSERT INTO pool_state (
			id, initialized, paused, start_time, end_time,
			total_deposited, total_refunded, event_seq, updated_at
		) VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			initialized = EXCLUDED.initialized,
			paused = EXCLUDED.paused,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			total_deposited = EXCLUDED.total_deposited,
			total_refunded = EXCLUDED.total_refunded,
			event_seq = EXCLUDED.event_seq,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.pool.Exec(ctx, query,
		st.Initialized,
		st.Paused,
		st.StartTime,
		st.EndTime,
		int64(st.TotalDeposited),
		int64(st.TotalRefunded),
		int64(st.EventSeq),
		st.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save pool state: %w", err)
	}
	return nil
}

// Load returns the snapshot, or ErrNotFound if none was saved yet.
func (s *PoolStateStore) Load(ctx context.Context) (*domain.PoolState, error) {
	query := `
		SELECT initialized, paused, start_time, end_time,
		       total_deposited, total_refunded, event_seq, updated_at
		FROM pool_state
		WHERE id = 1
	`
	var (
		st                                      domain.PoolState
		totalDeposited, totalRefunded, eventSeq int64
	)
	err := s.pool.QueryRow(ctx, query).Scan(
		&st.Initialized,
		&st.Paused,
		&st.StartTime,
		&st.EndTime,
		&totalDeposited,
		&totalRefunded,
		&eventSeq,
		&st.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("load pool state: %w", err)
	}
	st.TotalDeposited = uint64(totalDeposited)
	st.TotalRefunded = uint64(totalRefunded)
	st.EventSeq = uint64(eventSeq)
	return &st, nil
}
