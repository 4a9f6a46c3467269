package pool

import (
	"math/rand"
	"testing"

	"launchpool/internal/domain"
)

func TestAllocate_Proportional(t *testing.T) {
	// 60/40 split of an evenly divisible total allocates exactly.
	total := uint64(100_000)
	reward := uint64(1_000_000)

	a := allocate(reward, 60_000, total, 0)
	b := allocate(reward, 40_000, total, 0)

	if a != 600_000 {
		t.Errorf("60%% share: got %d, want 600000", a)
	}
	if b != 400_000 {
		t.Errorf("40%% share: got %d, want 400000", b)
	}
	if a+b != reward {
		t.Errorf("shares sum to %d, want %d", a+b, reward)
	}
}

func TestAllocate_SingleDepositorGetsAll(t *testing.T) {
	reward := uint64(domain.RewardTotal)
	got := allocate(reward, 7_777_777, 7_777_777, 0)
	if got != reward {
		t.Errorf("sole depositor: got %d, want the full %d", got, reward)
	}
}

func TestAllocate_ZeroInputs(t *testing.T) {
	if got := allocate(1_000_000, 0, 100, 0); got != 0 {
		t.Errorf("zero amount: got %d, want 0", got)
	}
	if got := allocate(1_000_000, 100, 0, 0); got != 0 {
		t.Errorf("zero total: got %d, want 0", got)
	}
}

func TestAllocate_DustFloor(t *testing.T) {
	// A 1% share of a 1e6 reward is 10000 units; a higher dust floor zeroes it.
	got := allocate(1_000_000, 1, 100, 0)
	if got == 0 {
		t.Fatal("expected a nonzero raw allocation")
	}
	if z := allocate(1_000_000, 1, 100, got+1); z != 0 {
		t.Errorf("below dust floor: got %d, want 0", z)
	}
	// At exactly the floor the allocation survives.
	if k := allocate(1_000_000, 1, 100, got); k != got {
		t.Errorf("at dust floor: got %d, want %d", k, got)
	}
}

func TestAllocate_RoundsDown(t *testing.T) {
	// Thirds cannot be represented exactly; each share floors and the sum
	// stays below the reward total.
	shares := make([]uint64, 3)
	var sum uint64
	for i := range shares {
		shares[i] = allocate(100, 1, 3, 0)
		sum += shares[i]
	}
	if shares[0] != 33 {
		t.Errorf("third of 100: got %d, want 33", shares[0])
	}
	if sum > 100 {
		t.Errorf("sum %d exceeds reward total 100", sum)
	}
}

func TestAllocate_SumNeverExceedsTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 200; iter++ {
		n := 1 + rng.Intn(40)
		amounts := make([]uint64, n)
		var total uint64
		for i := range amounts {
			amounts[i] = 1 + uint64(rng.Int63n(50_000_000_000))
			total += amounts[i]
		}
		reward := 1 + uint64(rng.Int63n(domain.RewardTotal))

		var sum uint64
		for _, a := range amounts {
			sum += allocate(reward, a, total, 0)
		}
		if sum > reward {
			t.Fatalf("iter %d: allocations sum to %d, reward total %d", iter, sum, reward)
		}
		// The remainder pass keeps the loss below one unit per participant.
		if reward-sum > uint64(n) {
			t.Fatalf("iter %d: rounding loss %d exceeds participant count %d", iter, reward-sum, n)
		}
	}
}

func TestSplitFee(t *testing.T) {
	cfg := domain.DefaultPoolConfig()

	tests := []struct {
		amount  uint64
		wantFee uint64
	}{
		{10_000, 200}, // 2% exactly
		{10_049, 200}, // fractional fee floors
		{99, 1},       // floor(99*200/10000) = 1
		{49, 0},       // below one fee unit
		{0, 0},
	}
	for _, tt := range tests {
		fee, refund := SplitFee(cfg, tt.amount)
		if fee != tt.wantFee {
			t.Errorf("SplitFee(%d): fee %d, want %d", tt.amount, fee, tt.wantFee)
		}
		if fee+refund != tt.amount {
			t.Errorf("SplitFee(%d): fee %d + refund %d != amount", tt.amount, fee, refund)
		}
	}
}

func TestFeeFor_FullPrecision(t *testing.T) {
	// Large amounts must not overflow on the scaled intermediate product.
	amount := uint64(50_000_000_000)
	fee := feeFor(amount, 200)
	if fee != 1_000_000_000 {
		t.Errorf("2%% of %d: got %d, want 1000000000", amount, fee)
	}
}
