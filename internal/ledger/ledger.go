// Package ledger abstracts the external fungible-token ledger that holds
// actual balances. The pool only ever holds authorization to move funds
// out of its own custody account; bookkeeping stays in the engine.
package ledger

import (
	"context"
	"errors"

	"launchpool/internal/domain"
)

// ErrTransferRejected is returned when the external ledger refuses a
// transfer (insufficient custody balance, frozen account, RPC failure).
var ErrTransferRejected = errors.New("ledger rejected transfer")

// TokenLedger is the minimal surface the pool needs from the external
// token ledger service.
type TokenLedger interface {
	// BalanceOf returns holder's balance of asset in base units.
	BalanceOf(ctx context.Context, asset domain.Asset, holder domain.Address) (uint64, error)

	// Transfer moves amount of asset from the pool's custody account to
	// the recipient. Implementations must either complete the movement or
	// return an error; there is no partial success.
	Transfer(ctx context.Context, asset domain.Asset, to domain.Address, amount uint64) error
}
