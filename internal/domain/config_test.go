package domain

import (
	"crypto/ed25519"
	"math/rand"
	"testing"
	"time"

	"github.com/mr-tron/base58"
)

func validConfig(t *testing.T) PoolConfig {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	addr := func() string {
		pub, _, err := ed25519.GenerateKey(rng)
		if err != nil {
			t.Fatalf("generate key: %v", err)
		}
		return base58.Encode(pub)
	}

	cfg := DefaultPoolConfig()
	cfg.BaseAsset = Asset(addr())
	cfg.RewardAsset = Asset(addr())
	cfg.FeeRecipient = Address(addr())
	return cfg
}

func TestPoolConfig_ValidDefaults(t *testing.T) {
	cfg := validConfig(t)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed on defaults: %v", err)
	}
	if cfg.RewardTotal != RewardTotal {
		t.Errorf("RewardTotal %d, want %d", cfg.RewardTotal, RewardTotal)
	}
	if cfg.FeeBps != 200 {
		t.Errorf("FeeBps %d, want 200", cfg.FeeBps)
	}
}

func TestPoolConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PoolConfig)
	}{
		{"missing base asset", func(c *PoolConfig) { c.BaseAsset = "" }},
		{"missing reward asset", func(c *PoolConfig) { c.RewardAsset = "" }},
		{"missing fee recipient", func(c *PoolConfig) { c.FeeRecipient = ZeroAddress }},
		{"zero reward total", func(c *PoolConfig) { c.RewardTotal = 0 }},
		{"fee at 100%", func(c *PoolConfig) { c.FeeBps = BpsDenom }},
		{"zero min stake", func(c *PoolConfig) { c.MinStake = 0 }},
		{"min above max", func(c *PoolConfig) { c.MinStake = c.MaxStake + 1 }},
		{"zero duration", func(c *PoolConfig) { c.Duration = 0 }},
		{"buffer exceeds duration", func(c *PoolConfig) { c.EndBuffer = c.Duration }},
		{"negative cooldown", func(c *PoolConfig) { c.Cooldown = -time.Second }},
		{"negative recovery delay", func(c *PoolConfig) { c.RecoveryDelay = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate succeeded, want error")
			}
		})
	}
}

func TestPhaseAt(t *testing.T) {
	var s PoolState
	if got := s.PhaseAt(100); got != PhaseUninitialized {
		t.Errorf("uninitialized: got %s", got)
	}

	s = PoolState{Initialized: true, StartTime: 100, EndTime: 200}
	if got := s.PhaseAt(150); got != PhaseOpen {
		t.Errorf("mid-window: got %s", got)
	}
	// The boundary belongs to the open phase; claims start strictly after.
	if got := s.PhaseAt(200); got != PhaseOpen {
		t.Errorf("at end: got %s", got)
	}
	if got := s.PhaseAt(201); got != PhaseClaimable {
		t.Errorf("past end: got %s", got)
	}
}
