// Package pool implements the launch pool accounting and lifecycle engine:
// the stake ledger, the proportional reward allocation, the claim and
// emergency-withdrawal paths, and the circuit breaker. State is owned by
// the Engine and mutated only under its lock; external transfers run with
// the reentrancy guard armed and commit nothing on failure.
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"launchpool/internal/auth"
	"launchpool/internal/domain"
	"launchpool/internal/idhash"
	"launchpool/internal/ledger"
	"launchpool/internal/storage"
)

// Options for constructing an Engine.
type Options struct {
	Config   domain.PoolConfig
	Account  domain.Address // pool custody account on the external ledger
	Deployer domain.Address // seeded into admin and pauser roles
	Ledger   ledger.TokenLedger

	// Optional. Roles overrides the deployer-seeded role set.
	Roles *auth.RoleSet
	// Optional persistence; nil keeps the engine memory-only.
	States storage.PoolStateStore
	Stakes storage.StakeStore
	// Optional. Defaults to NopNotifier.
	Notifier Notifier
}

// Engine is the pool singleton. Operations are serialized by an internal
// mutex; the caller decides submission order, mirroring the host model
// where independent calls land in an order outside the core's control.
type Engine struct {
	cfg     domain.PoolConfig
	account domain.Address
	roles   *auth.RoleSet
	ledger  ledger.TokenLedger
	states  storage.PoolStateStore
	stakeDB storage.StakeStore
	notify  Notifier

	mu         sync.Mutex
	inTransfer atomic.Bool
	state      domain.PoolState
	stakes     map[domain.Address]*domain.StakeRecord
}

// New validates the options, loads any persisted snapshot, and returns
// the engine.
func New(ctx context.Context, opts Options) (*Engine, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("pool config: %w", err)
	}
	if opts.Account.IsZero() {
		return nil, fmt.Errorf("%w: pool custody account required", ErrInvalidAddress)
	}
	if opts.Ledger == nil {
		return nil, fmt.Errorf("token ledger required")
	}
	roles := opts.Roles
	if roles == nil {
		if opts.Deployer.IsZero() {
			return nil, fmt.Errorf("%w: deployer address required", ErrInvalidAddress)
		}
		var err error
		roles, err = auth.NewRoleSet(opts.Deployer)
		if err != nil {
			return nil, err
		}
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NopNotifier{}
	}

	e := &Engine{
		cfg:     opts.Config,
		account: opts.Account,
		roles:   roles,
		ledger:  opts.Ledger,
		states:  opts.States,
		stakeDB: opts.Stakes,
		notify:  notifier,
		stakes:  make(map[domain.Address]*domain.StakeRecord),
	}
	if err := e.restore(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// restore loads the persisted snapshot, if any.
func (e *Engine) restore(ctx context.Context) error {
	if e.states != nil {
		s, err := e.states.Load(ctx)
		switch {
		case err == nil:
			e.state = *s
		case errors.Is(err, storage.ErrNotFound):
			// fresh pool
		default:
			return fmt.Errorf("load pool state: %w", err)
		}
	}
	if e.stakeDB != nil {
		records, err := e.stakeDB.List(ctx)
		if err != nil {
			return fmt.Errorf("load stake records: %w", err)
		}
		for _, r := range records {
			e.stakes[r.Owner] = r.Clone()
		}
	}
	return nil
}

// begin serializes the operation and rejects re-entry during an outbound
// transfer sequence. The flag check runs before the lock so a callback
// from a transfer fails fast instead of deadlocking.
func (e *Engine) begin() error {
	if e.inTransfer.Load() {
		return ErrReentrantCall
	}
	e.mu.Lock()
	return nil
}

// transferStep is one staged external value movement.
type transferStep struct {
	asset  domain.Asset
	to     domain.Address
	amount uint64
	label  string
}

// commit finishes an operation: it executes the staged transfers with the
// reentrancy guard armed, and only if every transfer succeeds applies the
// staged state, persists it, and emits the staged events. A transfer
// failure discards the whole stage. Persistence errors are reported to
// the caller but the in-memory state — which matches actual custody by
// then — stays committed. Must be called with e.mu held.
func (e *Engine) commit(ctx context.Context, next domain.PoolState, rec *domain.StakeRecord, steps []transferStep, events ...*domain.PoolEvent) error {
	if len(steps) > 0 {
		e.inTransfer.Store(true)
		err := func() error {
			defer e.inTransfer.Store(false)
			for _, s := range steps {
				if err := e.ledger.Transfer(ctx, s.asset, s.to, s.amount); err != nil {
					return fmt.Errorf("%w: %s (%d of %s to %s): %v",
						ErrTransferFailed, s.label, s.amount, s.asset, s.to, err)
				}
			}
			return nil
		}()
		if err != nil {
			return err
		}
	}

	e.state = next
	if rec != nil {
		e.stakes[rec.Owner] = rec
	}
	if e.states != nil {
		if err := e.states.Save(ctx, &next); err != nil {
			return fmt.Errorf("persist pool state: %w", err)
		}
	}
	if e.stakeDB != nil && rec != nil {
		if err := e.stakeDB.Upsert(ctx, rec); err != nil {
			return fmt.Errorf("persist stake record: %w", err)
		}
	}
	for _, ev := range events {
		e.notify.Emit(ctx, *ev)
	}
	return nil
}

// newEvent allocates the next sequence number on the staged state and
// builds the event with its deterministic id.
func (e *Engine) newEvent(next *domain.PoolState, typ domain.EventType, call Call, mut func(*domain.PoolEvent)) *domain.PoolEvent {
	next.EventSeq++
	ev := &domain.PoolEvent{
		Type:      typ,
		Timestamp: call.unix(),
		Sequence:  next.EventSeq,
	}
	if mut != nil {
		mut(ev)
	}
	ev.EventID = idhash.ComputeEventID(e.account.String(), ev.Sequence, string(typ), ev.Participant.String(), ev.Timestamp)
	return ev
}

// InitializePool opens the deposit window. Admin only, callable once, and
// the custody account must already hold the full reward total.
func (e *Engine) InitializePool(ctx context.Context, call Call) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	if err := e.roles.Require(auth.CapAdmin, call.Caller); err != nil {
		return err
	}
	if e.state.Initialized {
		return fmt.Errorf("%w: pool already initialized", ErrInvalidState)
	}
	bal, err := e.ledger.BalanceOf(ctx, e.cfg.RewardAsset, e.account)
	if err != nil {
		return fmt.Errorf("check reward funding: %w", err)
	}
	if bal < e.cfg.RewardTotal {
		return fmt.Errorf("%w: reward funding %d below required %d", ErrInvalidState, bal, e.cfg.RewardTotal)
	}

	next := e.state
	next.Initialized = true
	next.StartTime = call.unix()
	next.EndTime = next.StartTime + int64(e.cfg.Duration/time.Second)
	next.UpdatedAt = call.unix()

	ev := e.newEvent(&next, domain.EventPoolInitialized, call, func(ev *domain.PoolEvent) {
		ev.Participant = call.Caller
		ev.Reward = e.cfg.RewardTotal
	})
	return e.commit(ctx, next, nil, nil, ev)
}

// Deposit records a stake for the caller. The deposited value must already
// sit in the pool's custody account; the ledger balance is checked against
// the accounting invariant before the deposit is accepted.
func (e *Engine) Deposit(ctx context.Context, call Call, amount uint64) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	now := call.unix()
	if !e.state.Initialized {
		return fmt.Errorf("%w: pool not initialized", ErrInvalidState)
	}
	if e.state.Paused {
		return fmt.Errorf("%w: pool paused", ErrInvalidState)
	}
	if now < e.state.StartTime {
		return fmt.Errorf("%w: deposit window not open", ErrInvalidState)
	}
	if now > e.state.EndTime-int64(e.cfg.EndBuffer/time.Second) {
		return fmt.Errorf("%w: deposit window closed", ErrInvalidState)
	}
	if amount < e.cfg.MinStake {
		return &AmountError{Provided: amount, Required: e.cfg.MinStake, Reason: "below minimum"}
	}

	rec := e.stakes[call.Caller].Clone()
	if rec == nil {
		rec = &domain.StakeRecord{Owner: call.Caller, FirstDepositTime: now}
	}
	if rec.HasClaimed {
		return fmt.Errorf("%w: participant already exited", ErrStaking)
	}
	if rec.HasStaked && now < rec.LastDepositTime+int64(e.cfg.Cooldown/time.Second) {
		return fmt.Errorf("%w: cooldown active until %d", ErrStaking, rec.LastDepositTime+int64(e.cfg.Cooldown/time.Second))
	}
	if amount > e.cfg.MaxStake-rec.Amount {
		return &AmountError{Provided: rec.Amount + amount, Required: e.cfg.MaxStake, Reason: "exceeds cap"}
	}

	next := e.state
	next.TotalDeposited += amount
	next.UpdatedAt = now

	// Custody must already cover all outstanding deposits plus this one.
	bal, err := e.ledger.BalanceOf(ctx, e.cfg.BaseAsset, e.account)
	if err != nil {
		return fmt.Errorf("check custody balance: %w", err)
	}
	if bal+next.TotalRefunded < next.TotalDeposited {
		return fmt.Errorf("%w: deposit value not received by custody", ErrInvalidState)
	}

	rec.Amount += amount
	rec.HasStaked = true
	rec.LastDepositTime = now

	ev := e.newEvent(&next, domain.EventDepositAccepted, call, func(ev *domain.PoolEvent) {
		ev.Participant = call.Caller
		ev.Amount = amount
	})
	return e.commit(ctx, next, rec, nil, ev)
}

// Claim settles the caller's position after the window: fee to the fee
// recipient, the remainder of the deposit refunded, and the pro-rata
// reward allocation transferred. All three movements succeed or the claim
// leaves no trace.
func (e *Engine) Claim(ctx context.Context, call Call) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	now := call.unix()
	if !e.state.Initialized {
		return fmt.Errorf("%w: pool not initialized", ErrInvalidState)
	}
	if now <= e.state.EndTime {
		return fmt.Errorf("%w: claim window not open", ErrInvalidState)
	}

	rec := e.stakes[call.Caller].Clone()
	if rec == nil || !rec.HasStaked {
		return fmt.Errorf("%w: participant never staked", ErrClaim)
	}
	if rec.HasClaimed {
		return fmt.Errorf("%w: already claimed", ErrClaim)
	}
	if rec.Amount == 0 {
		return fmt.Errorf("%w: nothing to claim", ErrClaim)
	}

	fee, refund := SplitFee(e.cfg, rec.Amount)
	alloc := allocate(e.cfg.RewardTotal, rec.Amount, e.state.TotalDeposited, e.cfg.MinAllocation)
	if alloc == 0 {
		return fmt.Errorf("%w: allocation below dust floor %d", ErrClaim, e.cfg.MinAllocation)
	}
	bal, err := e.ledger.BalanceOf(ctx, e.cfg.RewardAsset, e.account)
	if err != nil {
		return fmt.Errorf("check reward balance: %w", err)
	}
	if bal < alloc {
		return fmt.Errorf("%w: reward supply %d short of allocation %d", ErrClaim, bal, alloc)
	}

	rec.Amount = 0
	rec.HasClaimed = true

	// TotalDeposited stays put: it is the allocation denominator for every
	// other participant. Only the refund tally moves.
	next := e.state
	next.TotalRefunded += refund
	next.UpdatedAt = now

	var steps []transferStep
	if fee > 0 {
		steps = append(steps, transferStep{e.cfg.BaseAsset, e.cfg.FeeRecipient, fee, "claim fee"})
	}
	if refund > 0 {
		steps = append(steps, transferStep{e.cfg.BaseAsset, call.Caller, refund, "deposit refund"})
	}
	steps = append(steps, transferStep{e.cfg.RewardAsset, call.Caller, alloc, "reward allocation"})

	ev := e.newEvent(&next, domain.EventClaimCompleted, call, func(ev *domain.PoolEvent) {
		ev.Participant = call.Caller
		ev.Amount = refund
		ev.Fee = fee
		ev.Reward = alloc
	})
	return e.commit(ctx, next, rec, steps, ev)
}

// EmergencyWithdraw returns the caller's full deposit while the pool is
// paused. No fee, no reward; the position is marked claimed so the normal
// claim path is closed afterwards.
func (e *Engine) EmergencyWithdraw(ctx context.Context, call Call) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	if !e.state.Paused {
		return fmt.Errorf("%w: emergency withdrawal requires a paused pool", ErrInvalidState)
	}
	rec := e.stakes[call.Caller].Clone()
	if rec == nil || !rec.HasStaked {
		return fmt.Errorf("%w: participant never staked", ErrClaim)
	}
	if rec.HasClaimed {
		return fmt.Errorf("%w: already claimed", ErrClaim)
	}
	if rec.Amount == 0 {
		return fmt.Errorf("%w: nothing to withdraw", ErrClaim)
	}

	amount := rec.Amount
	rec.Amount = 0
	rec.HasClaimed = true

	next := e.state
	next.TotalRefunded += amount
	next.UpdatedAt = call.unix()

	steps := []transferStep{{e.cfg.BaseAsset, call.Caller, amount, "emergency withdrawal"}}
	ev := e.newEvent(&next, domain.EventEmergencyWithdrawal, call, func(ev *domain.PoolEvent) {
		ev.Participant = call.Caller
		ev.Amount = amount
	})
	return e.commit(ctx, next, rec, steps, ev)
}

// Pause flips the circuit breaker. Pauser role only.
func (e *Engine) Pause(ctx context.Context, call Call) error {
	return e.setPaused(ctx, call, true)
}

// Unpause clears the circuit breaker. Pauser role only.
func (e *Engine) Unpause(ctx context.Context, call Call) error {
	return e.setPaused(ctx, call, false)
}

func (e *Engine) setPaused(ctx context.Context, call Call, paused bool) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	if err := e.roles.Require(auth.CapPauser, call.Caller); err != nil {
		return err
	}
	if e.state.Paused == paused {
		return fmt.Errorf("%w: pool already in requested pause state", ErrInvalidState)
	}

	next := e.state
	next.Paused = paused
	next.UpdatedAt = call.unix()

	typ := domain.EventPoolPaused
	if !paused {
		typ = domain.EventPoolUnpaused
	}
	ev := e.newEvent(&next, typ, call, func(ev *domain.PoolEvent) {
		ev.Participant = call.Caller
	})
	return e.commit(ctx, next, nil, nil, ev)
}

// RecoverAsset moves stray funds from custody to the admin caller. The
// reward asset is locked until RecoveryDelay past the window end so the
// participants' claimable allocation cannot be drained early.
func (e *Engine) RecoverAsset(ctx context.Context, call Call, asset domain.Asset, amount uint64) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	if err := e.roles.Require(auth.CapAdmin, call.Caller); err != nil {
		return err
	}
	if amount == 0 {
		return &AmountError{Provided: 0, Required: 1, Reason: "below minimum"}
	}
	if asset == e.cfg.RewardAsset {
		unlockAt := e.state.EndTime + int64(e.cfg.RecoveryDelay/time.Second)
		if !e.state.Initialized || call.unix() <= unlockAt {
			return fmt.Errorf("%w: reward asset locked until %d", ErrInvalidState, unlockAt)
		}
	}

	next := e.state
	next.UpdatedAt = call.unix()

	steps := []transferStep{{asset, call.Caller, amount, "asset recovery"}}
	ev := e.newEvent(&next, domain.EventAssetRecovered, call, func(ev *domain.PoolEvent) {
		ev.Participant = call.Caller
		ev.Asset = asset
		ev.Amount = amount
	})
	return e.commit(ctx, next, nil, steps, ev)
}

// GrantRole adds addr to a capability. Admin only.
func (e *Engine) GrantRole(ctx context.Context, call Call, capability auth.Capability, addr domain.Address) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	if err := e.roles.Grant(call.Caller, capability, addr); err != nil {
		return err
	}
	next := e.state
	next.UpdatedAt = call.unix()
	ev := e.newEvent(&next, domain.EventRoleGranted, call, func(ev *domain.PoolEvent) {
		ev.Participant = addr
	})
	return e.commit(ctx, next, nil, nil, ev)
}

// RevokeRole removes addr from a capability. Admin only.
func (e *Engine) RevokeRole(ctx context.Context, call Call, capability auth.Capability, addr domain.Address) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	if err := e.roles.Revoke(call.Caller, capability, addr); err != nil {
		return err
	}
	next := e.state
	next.UpdatedAt = call.unix()
	ev := e.newEvent(&next, domain.EventRoleRevoked, call, func(ev *domain.PoolEvent) {
		ev.Participant = addr
	})
	return e.commit(ctx, next, nil, nil, ev)
}

// AllocationFor returns the participant's reward allocation computed from
// live aggregate state. It is only final once the window has closed.
func (e *Engine) AllocationFor(participant domain.Address) (uint64, error) {
	if err := e.begin(); err != nil {
		return 0, err
	}
	defer e.mu.Unlock()

	rec := e.stakes[participant]
	if rec == nil || !rec.HasStaked {
		return 0, nil
	}
	return allocate(e.cfg.RewardTotal, rec.Amount, e.state.TotalDeposited, e.cfg.MinAllocation), nil
}

// ClaimPreview describes what Claim would transfer for a participant.
type ClaimPreview struct {
	Deposited uint64 `json:"deposited"`
	Fee       uint64 `json:"fee"`
	Refund    uint64 `json:"refund"`
	Reward    uint64 `json:"reward"`
	Claimed   bool   `json:"claimed"`
}

// Preview computes the claim breakdown without mutating state.
func (e *Engine) Preview(participant domain.Address) (*ClaimPreview, error) {
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	p := &ClaimPreview{}
	rec := e.stakes[participant]
	if rec == nil || !rec.HasStaked {
		return p, nil
	}
	p.Claimed = rec.HasClaimed
	p.Deposited = rec.Amount
	p.Fee, p.Refund = SplitFee(e.cfg, rec.Amount)
	p.Reward = allocate(e.cfg.RewardTotal, rec.Amount, e.state.TotalDeposited, e.cfg.MinAllocation)
	return p, nil
}

// State returns a copy of the pool state for inspection.
func (e *Engine) State() domain.PoolState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Stake returns a copy of the participant's record, or nil.
func (e *Engine) Stake(owner domain.Address) *domain.StakeRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stakes[owner].Clone()
}

// Stakes returns copies of every stake record.
func (e *Engine) Stakes() []*domain.StakeRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*domain.StakeRecord, 0, len(e.stakes))
	for _, r := range e.stakes {
		out = append(out, r.Clone())
	}
	return out
}

// Config returns the immutable pool parameters.
func (e *Engine) Config() domain.PoolConfig { return e.cfg }

// Roles exposes the capability table (for the API layer's inspection
// endpoints; mutation still goes through Grant/Revoke).
func (e *Engine) Roles() *auth.RoleSet { return e.roles }
