// Package domain defines the core types of the launch pool:
// pool state, stake records, configuration, addresses, and events.
package domain

// Phase is the lifecycle phase of a pool at a given instant.
type Phase string

const (
	// PhaseUninitialized: constructed but InitializePool has not run.
	PhaseUninitialized Phase = "UNINITIALIZED"
	// PhaseOpen: deposit window active (including the end buffer).
	PhaseOpen Phase = "OPEN"
	// PhaseClaimable: window elapsed, claims accepted.
	PhaseClaimable Phase = "CLAIMABLE"
)

// PoolState is the singleton accounting state of a pool.
// It is owned by the engine; stores persist snapshots of it.
type PoolState struct {
	Initialized    bool
	Paused         bool
	StartTime      int64  // unix seconds, set once by InitializePool
	EndTime        int64  // unix seconds, StartTime + Duration
	TotalDeposited uint64 // running sum of accepted deposits (gross, base units)
	TotalRefunded  uint64 // base units already returned via claims and emergency exits
	EventSeq       uint64 // ordinal of the most recently emitted notification
	UpdatedAt      int64  // unix seconds of the last committed mutation
}

// PhaseAt returns the lifecycle phase at the given unix time.
// Claims open strictly after EndTime; the end buffer is a deposit-side
// restriction and does not change the phase.
func (p *PoolState) PhaseAt(now int64) Phase {
	switch {
	case !p.Initialized:
		return PhaseUninitialized
	case now > p.EndTime:
		return PhaseClaimable
	default:
		return PhaseOpen
	}
}
