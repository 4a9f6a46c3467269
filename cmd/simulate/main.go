// Package main runs a deterministic end-to-end pool scenario on in-memory
// stores: fund, initialize, deposit from a cohort of participants, pause
// and resume mid-window, then settle every position and check the
// accounting invariants. Useful as an offline smoke run and for eyeballing
// allocation behavior under different cohort shapes.
package main

import (
	"context"
	"crypto/ed25519"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/mr-tron/base58"

	"launchpool/internal/domain"
	"launchpool/internal/ledger"
	"launchpool/internal/notify"
	"launchpool/internal/pool"
	"launchpool/internal/storage/memory"
)

func main() {
	participants := flag.Int("participants", 25, "Number of depositors in the cohort")
	seed := flag.Int64("seed", 1, "Deterministic scenario seed")
	emergencies := flag.Int("emergencies", 3, "Participants that exit via emergency withdrawal during the pause")
	flag.Parse()

	logger := log.New(os.Stdout, "[simulate] ", log.LstdFlags)

	if err := run(*participants, *emergencies, *seed, logger); err != nil {
		logger.Fatalf("Scenario failed: %v", err)
	}
}

func run(participants, emergencies int, seed int64, logger *log.Logger) error {
	if participants < 1 {
		return fmt.Errorf("need at least one participant")
	}
	if emergencies > participants {
		emergencies = participants
	}

	rng := rand.New(rand.NewSource(seed))

	custody := newAddress(rng)
	deployer := newAddress(rng)

	cfg := domain.DefaultPoolConfig()
	cfg.BaseAsset = domain.Asset(newAddress(rng))
	cfg.RewardAsset = domain.Asset(newAddress(rng))
	cfg.FeeRecipient = newAddress(rng)

	tokens := ledger.NewMemoryLedger(custody)
	tokens.Mint(cfg.RewardAsset, custody, cfg.RewardTotal)

	events := memory.NewEventStore()
	engine, err := pool.New(context.Background(), pool.Options{
		Config:   cfg,
		Account:  custody,
		Deployer: deployer,
		Ledger:   tokens,
		States:   memory.NewPoolStateStore(),
		Stakes:   memory.NewStakeStore(),
		Notifier: notify.NewJournal(events, logger),
	})
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	ctx := context.Background()
	clock := time.Unix(1_700_000_000, 0)

	if err := engine.InitializePool(ctx, pool.At(deployer, clock)); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	logger.Printf("Pool initialized: window %s", cfg.Duration)

	// Cohort deposits spread across the first half of the window, with
	// amounts spanning the allowed range so rounding paths get exercised.
	cohort := make([]domain.Address, participants)
	var deposited uint64
	for i := range cohort {
		cohort[i] = newAddress(rng)
		amount := cfg.MinStake + uint64(rng.Int63n(int64(cfg.MaxStake/8-cfg.MinStake)))
		clock = clock.Add(time.Duration(1+rng.Intn(30)) * time.Minute)

		// Deposit value lands in custody before the engine is told.
		tokens.Mint(cfg.BaseAsset, custody, amount)
		if err := engine.Deposit(ctx, pool.At(cohort[i], clock), amount); err != nil {
			return fmt.Errorf("deposit %d: %w", i, err)
		}
		deposited += amount
	}
	logger.Printf("Accepted %d deposits totalling %d base units", participants, deposited)

	// Mid-window incident: pause, let a few participants bail out, resume.
	clock = clock.Add(time.Hour)
	if err := engine.Pause(ctx, pool.At(deployer, clock)); err != nil {
		return fmt.Errorf("pause: %w", err)
	}
	for i := 0; i < emergencies; i++ {
		if err := engine.EmergencyWithdraw(ctx, pool.At(cohort[i], clock)); err != nil {
			return fmt.Errorf("emergency withdraw %d: %w", i, err)
		}
	}
	if err := engine.Unpause(ctx, pool.At(deployer, clock)); err != nil {
		return fmt.Errorf("unpause: %w", err)
	}
	logger.Printf("Paused and resumed; %d emergency exits", emergencies)

	// Advance past the window end and settle everyone who stayed.
	clock = time.Unix(engine.State().EndTime+1, 0)
	var claimed, rewarded, feesTaken uint64
	for i := emergencies; i < participants; i++ {
		preview, err := engine.Preview(cohort[i])
		if err != nil {
			return fmt.Errorf("preview %d: %w", i, err)
		}
		if err := engine.Claim(ctx, pool.At(cohort[i], clock)); err != nil {
			return fmt.Errorf("claim %d: %w", i, err)
		}
		claimed++
		rewarded += preview.Reward
		feesTaken += preview.Fee
	}
	logger.Printf("Settled %d claims: %d reward units allocated, %d base units in fees", claimed, rewarded, feesTaken)

	if rewarded > cfg.RewardTotal {
		return fmt.Errorf("allocated %d exceeds reward total %d", rewarded, cfg.RewardTotal)
	}

	// Custody drains to exactly the undistributed reward remainder: every
	// base unit went back out as fee or refund.
	baseLeft, _ := tokens.BalanceOf(ctx, cfg.BaseAsset, custody)
	rewardLeft, _ := tokens.BalanceOf(ctx, cfg.RewardAsset, custody)
	if baseLeft != 0 {
		return fmt.Errorf("custody still holds %d base units after full settlement", baseLeft)
	}
	if rewardLeft != cfg.RewardTotal-rewarded {
		return fmt.Errorf("custody reward balance %d, want remainder %d", rewardLeft, cfg.RewardTotal-rewarded)
	}

	journal, err := events.List(ctx, 0, 10_000)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	logger.Printf("Journal holds %d events; undistributed reward remainder %d", len(journal), rewardLeft)
	logger.Println("Scenario complete: all invariants hold")
	return nil
}

// newAddress derives a base58 ed25519 public key from the deterministic rng.
func newAddress(rng *rand.Rand) domain.Address {
	pub, _, err := ed25519.GenerateKey(rng)
	if err != nil {
		panic(err)
	}
	addr, err := domain.ParseAddress(base58.Encode(pub))
	if err != nil {
		panic(err)
	}
	return addr
}
