package clickhouse

import (
	"context"
	"fmt"

	"launchpool/internal/domain"
	"launchpool/internal/storage"
)

// EventStore implements storage.EventStore using ClickHouse. MergeTree
// does not enforce uniqueness, so Append checks for the event id
// explicitly before inserting.
type EventStore struct {
	conn *Conn
}

// NewEventStore creates a new EventStore.
func NewEventStore(conn *Conn) *EventStore {
	return &EventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

// Append adds one event. Returns ErrDuplicateKey if the event id exists.
func (s *EventStore) Append(ctx context.Context, e *domain.PoolEvent) error {
	if e == nil || e.EventID == "" {
		return storage.ErrInvalidInput
	}

	exists, err := s.exists(ctx, e.EventID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	query := `
		INSERT INTO pool_events (
			event_id, type, participant, amount, fee, reward, asset, ts, sequence
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	err = s.conn.Exec(ctx, query,
		e.EventID,
		string(e.Type),
		e.Participant.String(),
		e.Amount,
		e.Fee,
		e.Reward,
		e.Asset.String(),
		e.Timestamp,
		e.Sequence,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
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
	args := []any{since}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, uint64(limit))
	}

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var result []*domain.PoolEvent
	for rows.Next() {
		var (
			e                       domain.PoolEvent
			typ, participant, asset string
		)
		err := rows.Scan(&e.EventID, &typ, &participant, &e.Amount, &e.Fee, &e.Reward, &asset, &e.Timestamp, &e.Sequence)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Type = domain.EventType(typ)
		e.Participant = domain.Address(participant)
		e.Asset = domain.Asset(asset)
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return result, nil
}

// exists checks whether an event id is already journaled.
func (s *EventStore) exists(ctx context.Context, eventID string) (bool, error) {
	var count uint64
	row := s.conn.QueryRow(ctx, `SELECT count() FROM pool_events WHERE event_id = $1`, eventID)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
