package domain

import (
	"context"
	"time"
)

// StepEvent is emitted after every visible step.
type StepEvent struct {
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
	Kind      Kind      `json:"kind"`
	Index     int64     `json:"index"`
	Label     string    `json:"label,omitempty"`
	Stats     Stats     `json:"stats"`
}

// StatusEvent is emitted on every RunStatus transition.
type StatusEvent struct {
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
	Kind      Kind      `json:"kind"`
	From      RunStatus `json:"from"`
	To        RunStatus `json:"to"`
}

// LifecycleHooks defines callbacks for runner observability.
type LifecycleHooks struct {
	OnStep    func(context.Context, *StepEvent)
	OnStatus  func(context.Context, *StatusEvent)
	OnSuccess func(context.Context, RunState)
	OnFault   func(context.Context, *Fault)
}

// Cue is the advisory feedback collaborator (sound, bell, haptics).
// Its failures never affect a run.
type Cue interface {
	Step(ctx context.Context, ev *StepEvent) error
	Success(ctx context.Context, state RunState) error
}
