package runner

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultPollInterval is how often a paused loop rechecks the gate.
const DefaultPollInterval = 100 * time.Millisecond

// PauseGate is the cooperative pause flag of one Runner. It never preempts a
// step: the loop only consults it between steps.
type PauseGate struct {
	paused atomic.Bool
}

func (g *PauseGate) Pause()       { g.paused.Store(true) }
func (g *PauseGate) Resume()      { g.paused.Store(false) }
func (g *PauseGate) Paused() bool { return g.paused.Load() }

// Wait returns once the gate is open, polling every interval while it is
// closed. It returns ctx.Err() as soon as ctx is done.
func (g *PauseGate) Wait(ctx context.Context, clock Clock, interval time.Duration) error {
	for g.paused.Load() {
		if err := clock.Sleep(ctx, interval); err != nil {
			return err
		}
	}
	return ctx.Err()
}
