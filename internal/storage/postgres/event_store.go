package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"launchpool/internal/domain"
	"launchpool/internal/storage"
)

// EventStore implements storage.EventStore using PostgreSQL.
type EventStore struct {
	pool *Pool
}

// NewEventStore creates a new EventStore.
func NewEventStore(pool *Pool) *EventStore {
	return &EventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

// Append adds one event. Returns ErrDuplicateKey if the event id exists.
func (s *EventStore) Append(ctx context.Context, e *domain.PoolEvent) error {
	if e == nil || e.EventID == "" {
		return storage.ErrInvalidInput
	}
	query := `
		INSERT INTO pool_events (
			event_id, type, participant, amount, fee, reward, asset, ts, sequence
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.pool.Exec(ctx, query,
		e.EventID,
		string(e.Type),
		e.Participant.String(),
		int64(e.Amount),
		int64(e.Fee),
		int64(e.Reward),
		e.Asset.String(),
		e.Timestamp,
		int64(e.Sequence),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// List returns events with sequence > since, ordered by sequence ASC.
func (s *EventStore) List(ctx context.Context, since uint64, limit int) ([]*domain.PoolEvent, error) {
	query := `
		SELECT event_id, type, participant, amount, fee, reward, asset, ts, sequence
		FROM pool_events
		WHERE sequence > $1
		ORDER BY sequence ASC
	`
	args := []any{int64(since)}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var result []*domain.PoolEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return result, nil
}

// scanEvent scans one row into a PoolEvent.
func scanEvent(row pgx.Row) (*domain.PoolEvent, error) {
	var (
		e                             domain.PoolEvent
		typ, participant, asset       string
		amount, fee, reward, sequence int64
	)
	err := row.Scan(&e.EventID, &typ, &participant, &amount, &fee, &reward, &asset, &e.Timestamp, &sequence)
	if err != nil {
		return nil, err
	}
	e.Type = domain.EventType(typ)
	e.Participant = domain.Address(participant)
	e.Amount = uint64(amount)
	e.Fee = uint64(fee)
	e.Reward = uint64(reward)
	e.Asset = domain.Asset(asset)
	e.Sequence = uint64(sequence)
	return &e, nil
}
