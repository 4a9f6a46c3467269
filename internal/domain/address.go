package domain

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Address is a base58-encoded 32-byte ed25519 public key identifying a
// participant, a fee recipient, or an asset mint.
type Address string

// ZeroAddress is the absent/invalid identity.
const ZeroAddress = Address("")

// ParseAddress validates s as a base58-encoded 32-byte ed25519 point.
func ParseAddress(s string) (Address, error) {
	if s == "" {
		return ZeroAddress, fmt.Errorf("empty address")
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return ZeroAddress, fmt.Errorf("decode address: %w", err)
	}
	if len(raw) != 32 {
		return ZeroAddress, fmt.Errorf("address must be 32 bytes, got %d", len(raw))
	}
	if _, err := new(edwards25519.Point).SetBytes(raw); err != nil {
		return ZeroAddress, fmt.Errorf("address not on ed25519 curve: %w", err)
	}
	return Address(s), nil
}

// String returns the base58 form.
func (a Address) String() string { return string(a) }

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool { return a == ZeroAddress }

// Asset is a handle to a fungible token ledger entry (its mint address).
// The base currency is itself an asset moved through the same ledger.
type Asset string

// String returns the base58 form of the asset mint.
func (a Asset) String() string { return string(a) }
