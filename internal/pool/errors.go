package pool

import (
	"errors"
	"fmt"
)

// Kind sentinels for the engine's failure taxonomy. Operations wrap these
// with context; callers match with errors.Is. Every error aborts the whole
// operation — the engine never retries or commits partially.
var (
	// ErrInvalidAddress: zero or malformed identity supplied at construction.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidState: operation attempted outside its lifecycle window.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidAmount: value outside an operation's allowed bounds.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrStaking: ledger-specific constraint violation (e.g. cooldown).
	ErrStaking = errors.New("staking constraint violated")

	// ErrClaim: claim-specific constraint violation (already claimed,
	// allocation below the dust floor, reward supply short).
	ErrClaim = errors.New("claim rejected")

	// ErrTransferFailed: an external value movement did not complete.
	// The enclosing operation is discarded without committing.
	ErrTransferFailed = errors.New("transfer failed")

	// ErrReentrantCall: the engine was re-entered while an outbound
	// transfer sequence was in flight.
	ErrReentrantCall = errors.New("reentrant call during transfer")
)

// AmountError carries the provided value and the bound it violated.
type AmountError struct {
	Provided uint64
	Required uint64
	Reason   string // "below minimum" or "exceeds cap"
}

func (e *AmountError) Error() string {
	return fmt.Sprintf("amount %d %s %d", e.Provided, e.Reason, e.Required)
}

// Unwrap makes errors.Is(err, ErrInvalidAmount) hold.
func (e *AmountError) Unwrap() error { return ErrInvalidAmount }
