package pool

import (
	"github.com/holiman/uint256"

	"launchpool/internal/domain"
)

// Allocation math. All divisions floor; intermediates are 256-bit so
// rewardTotal * Scale * amount can never overflow. The truncating first
// division is followed by a second proportional pass over its remainder,
// which claws back most of the rounding loss without ever letting the sum
// of all allocations exceed rewardTotal.

// allocate returns amount/total of rewardTotal in reward base units,
// with the dust floor applied.
func allocate(rewardTotal, amount, total, minAllocation uint64) uint64 {
	if amount == 0 || total == 0 {
		return 0
	}
	scale := uint256.NewInt(domain.Scale)
	totalU := uint256.NewInt(total)

	// scaled = rewardTotal * Scale * amount / total
	scaled := new(uint256.Int).Mul(uint256.NewInt(rewardTotal), scale)
	scaled.Mul(scaled, uint256.NewInt(amount))
	scaled.Div(scaled, totalU)

	base := new(uint256.Int).Div(scaled, scale)
	rem := new(uint256.Int).Mod(scaled, scale)

	// Redistribute the truncated fraction proportionally once more.
	fix := new(uint256.Int).Mul(rem, uint256.NewInt(amount))
	fix.Div(fix, totalU)
	fix.Div(fix, scale)
	base.Add(base, fix)

	out := base.Uint64()
	if out < minAllocation {
		return 0
	}
	return out
}

// feeFor returns amount * feeBps / 10000, computed scaled-then-descaled so
// the intermediate product keeps full precision before the single floor.
func feeFor(amount, feeBps uint64) uint64 {
	v := new(uint256.Int).Mul(uint256.NewInt(amount), uint256.NewInt(feeBps))
	v.Mul(v, uint256.NewInt(domain.Scale))
	v.Div(v, uint256.NewInt(domain.BpsDenom))
	v.Div(v, uint256.NewInt(domain.Scale))
	return v.Uint64()
}

// SplitFee returns the claim fee and the refundable remainder for a
// deposited amount. fee + refund == amount exactly.
func SplitFee(cfg domain.PoolConfig, amount uint64) (fee, refund uint64) {
	fee = feeFor(amount, cfg.FeeBps)
	return fee, amount - fee
}
