package domain

import (
	"fmt"
	"time"
)

// Fixed-point parameters shared by the allocation engine and fee math.
// Rounding direction is floor everywhere; Scale preserves 12 decimal digits
// of the share fraction through integer division.
const (
	Scale       = 1_000_000_000_000 // 1e12
	BpsDenom    = 10_000            // 10,000 bps = 100%
	RewardTotal = 105_172_500_000   // reward token base units distributed per pool
)

// PoolConfig holds the immutable parameters a pool is constructed with.
type PoolConfig struct {
	BaseAsset    Asset   // deposited base-currency asset
	RewardAsset  Asset   // reward token distributed pro rata
	FeeRecipient Address // receives the claim-time fee

	RewardTotal   uint64 // total reward token base units to distribute
	FeeBps        uint64 // claim fee in basis points of the deposited amount
	MinStake      uint64 // smallest accepted deposit (base units)
	MaxStake      uint64 // per-wallet cap on cumulative deposits (base units)
	MinAllocation uint64 // dust floor: allocations below this are zeroed

	Duration      time.Duration // deposit window length from initialization
	EndBuffer     time.Duration // deposits rejected this close to the window end
	Cooldown      time.Duration // minimum gap between deposits from one wallet
	RecoveryDelay time.Duration // reward-asset recovery allowed only this long after end
}

// DefaultPoolConfig returns the documented default parameters.
// Asset handles and the fee recipient must still be set by the caller.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		RewardTotal:   RewardTotal,
		FeeBps:        200, // 2%
		MinStake:      100_000,
		MaxStake:      50_000_000_000,
		MinAllocation: 1_000_000,
		Duration:      120 * time.Hour, // 5 days
		EndBuffer:     5 * time.Minute,
		Cooldown:      time.Hour,
		RecoveryDelay: 720 * time.Hour, // 30 days
	}
}

// Validate checks the configuration for internal consistency.
func (c PoolConfig) Validate() error {
	if c.BaseAsset == "" {
		return fmt.Errorf("base asset required")
	}
	if c.RewardAsset == "" {
		return fmt.Errorf("reward asset required")
	}
	if c.FeeRecipient.IsZero() {
		return fmt.Errorf("fee recipient required")
	}
	if c.RewardTotal == 0 {
		return fmt.Errorf("reward total must be positive")
	}
	if c.FeeBps >= BpsDenom {
		return fmt.Errorf("fee %d bps must be below %d", c.FeeBps, BpsDenom)
	}
	if c.MinStake == 0 || c.MinStake > c.MaxStake {
		return fmt.Errorf("min stake %d must be in (0, max stake %d]", c.MinStake, c.MaxStake)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive")
	}
	if c.EndBuffer < 0 || c.EndBuffer >= c.Duration {
		return fmt.Errorf("end buffer %s must be shorter than duration %s", c.EndBuffer, c.Duration)
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("cooldown must not be negative")
	}
	if c.RecoveryDelay < 0 {
		return fmt.Errorf("recovery delay must not be negative")
	}
	return nil
}
