package ledger

import (
	"context"
	"fmt"
	"sync"

	"launchpool/internal/domain"
)

// MemoryLedger is an in-process TokenLedger used by tests and the
// simulation cmd. It keeps per-asset balances, can be told to fail the
// next N transfers, and can run a hook inside Transfer so callers can
// exercise re-entrant paths.
type MemoryLedger struct {
	mu       sync.Mutex
	custody  domain.Address
	balances map[domain.Asset]map[domain.Address]uint64

	failNext   int
	onTransfer func(asset domain.Asset, to domain.Address, amount uint64)
}

// NewMemoryLedger creates a ledger whose Transfer debits the given
// custody account.
func NewMemoryLedger(custody domain.Address) *MemoryLedger {
	return &MemoryLedger{
		custody:  custody,
		balances: make(map[domain.Asset]map[domain.Address]uint64),
	}
}

// Mint credits holder with amount of asset out of thin air.
func (l *MemoryLedger) Mint(asset domain.Asset, holder domain.Address, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(asset, holder, amount)
}

// FailNextTransfers makes the next n Transfer calls fail.
func (l *MemoryLedger) FailNextTransfers(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failNext = n
}

// OnTransfer installs a hook invoked (outside the ledger lock) after each
// successful transfer. Tests use it to attempt re-entry into the engine.
func (l *MemoryLedger) OnTransfer(fn func(asset domain.Asset, to domain.Address, amount uint64)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onTransfer = fn
}

// BalanceOf implements TokenLedger.
func (l *MemoryLedger) BalanceOf(_ context.Context, asset domain.Asset, holder domain.Address) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[asset][holder], nil
}

// Transfer implements TokenLedger, moving funds out of the custody account.
func (l *MemoryLedger) Transfer(_ context.Context, asset domain.Asset, to domain.Address, amount uint64) error {
	l.mu.Lock()
	if l.failNext > 0 {
		l.failNext--
		l.mu.Unlock()
		return fmt.Errorf("%w: injected failure", ErrTransferRejected)
	}
	have := l.balances[asset][l.custody]
	if have < amount {
		l.mu.Unlock()
		return fmt.Errorf("%w: custody holds %d of %s, need %d", ErrTransferRejected, have, asset, amount)
	}
	l.balances[asset][l.custody] = have - amount
	l.credit(asset, to, amount)
	hook := l.onTransfer
	l.mu.Unlock()

	if hook != nil {
		hook(asset, to, amount)
	}
	return nil
}

// credit requires l.mu to be held.
func (l *MemoryLedger) credit(asset domain.Asset, holder domain.Address, amount uint64) {
	m := l.balances[asset]
	if m == nil {
		m = make(map[domain.Address]uint64)
		l.balances[asset] = m
	}
	m[holder] += amount
}

var _ TokenLedger = (*MemoryLedger)(nil)
