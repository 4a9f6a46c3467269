package memory

import (
	"context"
	"errors"
	"testing"

	"launchpool/internal/domain"
	"launchpool/internal/storage"
)

func TestPoolStateStore_SaveAndLoad(t *testing.T) {
	store := NewPoolStateStore()
	ctx := context.Background()

	st := &domain.PoolState{
		Initialized:    true,
		StartTime:      1700000000,
		EndTime:        1700432000,
		TotalDeposited: 1000,
		EventSeq:       3,
		UpdatedAt:      1700000100,
	}
	if err := store.Save(ctx, st); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *got != *st {
		t.Errorf("loaded state %+v, want %+v", got, st)
	}

	// The store keeps its own copy.
	st.TotalDeposited = 9999
	got2, _ := store.Load(ctx)
	if got2.TotalDeposited != 1000 {
		t.Errorf("store mutated through caller's pointer: %d", got2.TotalDeposited)
	}
}

func TestPoolStateStore_LoadEmpty(t *testing.T) {
	store := NewPoolStateStore()

	_, err := store.Load(context.Background())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestPoolStateStore_SaveNil(t *testing.T) {
	store := NewPoolStateStore()

	err := store.Save(context.Background(), nil)
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}

func TestPoolStateStore_SaveReplaces(t *testing.T) {
	store := NewPoolStateStore()
	ctx := context.Background()

	store.Save(ctx, &domain.PoolState{TotalDeposited: 1})
	store.Save(ctx, &domain.PoolState{TotalDeposited: 2})

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.TotalDeposited != 2 {
		t.Errorf("TotalDeposited %d, want 2", got.TotalDeposited)
	}
}
