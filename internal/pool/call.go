package pool

import (
	"context"
	"time"

	"launchpool/internal/domain"
)

// Call threads the caller identity and the observation time into an
// operation. There is no ambient clock in the engine: every window check
// uses Call.Now, which makes the state machine fully deterministic under
// test and leaves ordering to whoever serializes the calls.
type Call struct {
	Caller domain.Address
	Now    time.Time
}

// At is a convenience constructor.
func At(caller domain.Address, now time.Time) Call {
	return Call{Caller: caller, Now: now}
}

func (c Call) unix() int64 { return c.Now.Unix() }

// Notifier receives committed pool events. Emission happens after the
// operation's state is final; a notifier must not call back into the engine.
type Notifier interface {
	Emit(ctx context.Context, e domain.PoolEvent)
}

// NopNotifier discards events.
type NopNotifier struct{}

// Emit implements Notifier.
func (NopNotifier) Emit(context.Context, domain.PoolEvent) {}
