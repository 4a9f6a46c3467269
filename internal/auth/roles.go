// Package auth provides the capability table gating privileged pool
// operations: a role is a set of addresses, membership is a pure lookup.
package auth

import (
	"errors"
	"fmt"
	"sync"

	"launchpool/internal/domain"
)

// Capability names a privileged role.
type Capability string

const (
	// CapAdmin can initialize the pool, recover stray assets, and
	// grant/revoke roles.
	CapAdmin Capability = "admin"
	// CapPauser is the circuit-breaker role: pause and unpause.
	CapPauser Capability = "pauser"
)

// ErrUnauthorized is the kind sentinel for failed capability checks.
var ErrUnauthorized = errors.New("unauthorized")

// UnauthorizedError reports the caller and the capability it lacked.
type UnauthorizedError struct {
	Caller     domain.Address
	Capability Capability
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("caller %s lacks %s capability", e.Caller, e.Capability)
}

// Unwrap makes errors.Is(err, ErrUnauthorized) hold.
func (e *UnauthorizedError) Unwrap() error { return ErrUnauthorized }

// RoleSet is the process-wide authorization table. The deployer is seeded
// into both capabilities at construction; afterwards membership changes
// only through Grant/Revoke, themselves gated on CapAdmin.
type RoleSet struct {
	mu      sync.RWMutex
	members map[Capability]map[domain.Address]struct{}
}

// NewRoleSet creates a role set with deployer holding admin and pauser.
func NewRoleSet(deployer domain.Address) (*RoleSet, error) {
	if deployer.IsZero() {
		return nil, fmt.Errorf("deployer address required")
	}
	return &RoleSet{
		members: map[Capability]map[domain.Address]struct{}{
			CapAdmin:  {deployer: {}},
			CapPauser: {deployer: {}},
		},
	}, nil
}

// Has reports whether addr holds the capability.
func (r *RoleSet) Has(capability Capability, addr domain.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[capability][addr]
	return ok
}

// Require returns an UnauthorizedError unless addr holds the capability.
func (r *RoleSet) Require(capability Capability, addr domain.Address) error {
	if !r.Has(capability, addr) {
		return &UnauthorizedError{Caller: addr, Capability: capability}
	}
	return nil
}

// Grant adds addr to the capability. Only admins may grant.
func (r *RoleSet) Grant(caller domain.Address, capability Capability, addr domain.Address) error {
	if err := r.Require(CapAdmin, caller); err != nil {
		return err
	}
	if addr.IsZero() {
		return fmt.Errorf("cannot grant %s to zero address", capability)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.members[capability]
	if !ok {
		return fmt.Errorf("unknown capability %q", capability)
	}
	set[addr] = struct{}{}
	return nil
}

// Revoke removes addr from the capability. Only admins may revoke, and the
// last admin cannot be removed: that would orphan the pool.
func (r *RoleSet) Revoke(caller domain.Address, capability Capability, addr domain.Address) error {
	if err := r.Require(CapAdmin, caller); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.members[capability]
	if !ok {
		return fmt.Errorf("unknown capability %q", capability)
	}
	if capability == CapAdmin && len(set) == 1 {
		if _, last := set[addr]; last {
			return fmt.Errorf("cannot revoke the last admin")
		}
	}
	delete(set, addr)
	return nil
}

// Members returns the addresses holding the capability, for inspection.
func (r *RoleSet) Members(capability Capability) []domain.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Address, 0, len(r.members[capability]))
	for addr := range r.members[capability] {
		out = append(out, addr)
	}
	return out
}
