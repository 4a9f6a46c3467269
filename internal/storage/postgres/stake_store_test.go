package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchpool/internal/domain"
	"launchpool/internal/storage"
)

func TestStakeStore_UpsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStakeStore(pool)
	ctx := context.Background()

	r := &domain.StakeRecord{
		Owner:            "Participant111",
		Amount:           50_000,
		HasStaked:        true,
		HasClaimed:       false,
		FirstDepositTime: 1700000000,
		LastDepositTime:  1700003600,
	}
	err := store.Upsert(ctx, r)
	require.NoError(t, err)

	got, err := store.Get(ctx, "Participant111")
	require.NoError(t, err)
	assert.Equal(t, *r, *got)

	// Upsert replaces the row.
	r.Amount = 80_000
	r.HasClaimed = true
	require.NoError(t, store.Upsert(ctx, r))

	got, err = store.Get(ctx, "Participant111")
	require.NoError(t, err)
	assert.Equal(t, uint64(80_000), got.Amount)
	assert.True(t, got.HasClaimed)
}

func TestStakeStore_GetNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStakeStore(pool)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStakeStore_UpsertInvalid(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStakeStore(pool)
	ctx := context.Background()

	assert.ErrorIs(t, store.Upsert(ctx, nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Upsert(ctx, &domain.StakeRecord{}), storage.ErrInvalidInput)
}

func TestStakeStore_ListOrdered(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStakeStore(pool)
	ctx := context.Background()

	records := []*domain.StakeRecord{
		{Owner: "b", Amount: 2, HasStaked: true, FirstDepositTime: 200, LastDepositTime: 200},
		{Owner: "a", Amount: 1, HasStaked: true, FirstDepositTime: 100, LastDepositTime: 100},
		{Owner: "c", Amount: 3, HasStaked: true, FirstDepositTime: 100, LastDepositTime: 300},
	}
	for _, r := range records {
		require.NoError(t, store.Upsert(ctx, r))
	}

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Ordered by first deposit time, owner breaking ties.
	assert.Equal(t, domain.Address("a"), got[0].Owner)
	assert.Equal(t, domain.Address("c"), got[1].Owner)
	assert.Equal(t, domain.Address("b"), got[2].Owner)
}
