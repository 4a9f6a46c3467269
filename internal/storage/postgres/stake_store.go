package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"launchpool/internal/domain"
	"launchpool/internal/storage"
)

// StakeStore implements storage.StakeStore using PostgreSQL.
type StakeStore struct {
	pool *Pool
}

// NewStakeStore creates a new StakeStore.
func NewStakeStore(pool *Pool) *StakeStore {
	return &StakeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.StakeStore = (*StakeStore)(nil)

// Upsert writes the record keyed by owner.
func (s *StakeStore) Upsert(ctx context.Context, r *domain.StakeRecord) error {
	if r == nil || r.Owner.IsZero() {
		return storage.ErrInvalidInput
	}
	query := `
		INSERT INTO stake_records (
			owner, amount, has_staked, has_claimed,
			first_deposit_time, last_deposit_time
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (owner) DO UPDATE SET
			amount = EXCLUDED.amount,
			has_staked = EXCLUDED.has_staked,
			has_claimed = EXCLUDED.has_claimed,
			first_deposit_time = EXCLUDED.first_deposit_time,
			last_deposit_time = EXCLUDED.last_deposit_time
	`
	_, err := s.pool.Exec(ctx, query,
		r.Owner.String(),
		int64(r.Amount),
		r.HasStaked,
		r.HasClaimed,
		r.FirstDepositTime,
		r.LastDepositTime,
	)
	if err != nil {
		return fmt.Errorf("upsert stake record: %w", err)
	}
	return nil
}

// Get returns the record for owner, or ErrNotFound.
func (s *StakeStore) Get(ctx context.Context, owner domain.Address) (*domain.StakeRecord, error) {
	query := `
		SELECT owner, amount, has_staked, has_claimed,
		       first_deposit_time, last_deposit_time
		FROM stake_records
		WHERE owner = $1
	`
	row := s.pool.QueryRow(ctx, query, owner.String())
	r, err := scanStakeRecord(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get stake record: %w", err)
	}
	return r, nil
}

// List returns every record, ordered by first deposit time ASC.
func (s *StakeStore) List(ctx context.Context) ([]*domain.StakeRecord, error) {
	query := `
		SELECT owner, amount, has_staked, has_claimed,
		       first_deposit_time, last_deposit_time
		FROM stake_records
		ORDER BY first_deposit_time ASC, owner ASC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stake records: %w", err)
	}
	defer rows.Close()

	var result []*domain.StakeRecord
	for rows.Next() {
		r, err := scanStakeRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stake record: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stake records: %w", err)
	}
	return result, nil
}

// scanStakeRecord scans one row into a StakeRecord.
func scanStakeRecord(row pgx.Row) (*domain.StakeRecord, error) {
	var (
		r      domain.StakeRecord
		owner  string
		amount int64
	)
	err := row.Scan(
		&owner,
		&amount,
		&r.HasStaked,
		&r.HasClaimed,
		&r.FirstDepositTime,
		&r.LastDepositTime,
	)
	if err != nil {
		return nil, err
	}
	r.Owner = domain.Address(owner)
	r.Amount = uint64(amount)
	return &r, nil
}
