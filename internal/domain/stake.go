package domain

// StakeRecord tracks one participant's position in the pool.
// Records are created on first deposit and zeroed in place on claim,
// never deleted: HasClaimed must survive so a second claim can be rejected.
type StakeRecord struct {
	Owner            Address
	Amount           uint64 // currently deposited, unclaimed balance (base units)
	HasStaked        bool
	HasClaimed       bool
	FirstDepositTime int64 // unix seconds
	LastDepositTime  int64 // unix seconds, drives the cooldown check
}

// Clone returns a copy safe to mutate independently.
func (r *StakeRecord) Clone() *StakeRecord {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
