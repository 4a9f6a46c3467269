package clickhouse

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchpool/internal/domain"
	"launchpool/internal/storage"
)

func makeEvent(seq uint64) *domain.PoolEvent {
	return &domain.PoolEvent{
		EventID:     fmt.Sprintf("event-%03d", seq),
		Type:        domain.EventDepositAccepted,
		Participant: "Participant111",
		Amount:      500,
		Timestamp:   1700000000 + int64(seq),
		Sequence:    seq,
	}
}

func TestEventStore_AppendAndList(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEventStore(conn)
	ctx := context.Background()

	e := &domain.PoolEvent{
		EventID:     "claim-event-001",
		Type:        domain.EventClaimCompleted,
		Participant: "Participant111",
		Amount:      490,
		Fee:         10,
		Reward:      1_000_000,
		Asset:       "RewardMint",
		Timestamp:   1700432001,
		Sequence:    1,
	}
	err := store.Append(ctx, e)
	require.NoError(t, err)

	got, err := store.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, *e, *got[0])
}

func TestEventStore_AppendDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEventStore(conn)
	ctx := context.Background()

	e := makeEvent(1)
	require.NoError(t, store.Append(ctx, e))

	// MergeTree does not enforce uniqueness; the store's explicit check does.
	err := store.Append(ctx, e)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestEventStore_AppendInvalid(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEventStore(conn)
	ctx := context.Background()

	assert.ErrorIs(t, store.Append(ctx, nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Append(ctx, &domain.PoolEvent{Sequence: 1}), storage.ErrInvalidInput)
}

func TestEventStore_ListSinceAndLimit(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEventStore(conn)
	ctx := context.Background()

	for seq := uint64(1); seq <= 10; seq++ {
		require.NoError(t, store.Append(ctx, makeEvent(seq)))
	}

	got, err := store.List(ctx, 4, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, uint64(5), got[0].Sequence)
	assert.Equal(t, uint64(6), got[1].Sequence)
	assert.Equal(t, uint64(7), got[2].Sequence)

	got, err = store.List(ctx, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
