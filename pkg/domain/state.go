package domain

import "time"

// RunStatus is the lifecycle status of a Runner.
type RunStatus string

const (
	StatusIdle      RunStatus = "idle"
	StatusRunning   RunStatus = "running"
	StatusPaused    RunStatus = "paused"
	StatusCompleted RunStatus = "completed"
	StatusCancelled RunStatus = "cancelled"
)

// Active reports whether a step loop exists for this status.
func (s RunStatus) Active() bool {
	return s == StatusRunning || s == StatusPaused
}

// Terminal reports whether the run has ended.
func (s RunStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanStart reports whether a new run may begin from this status.
func (s RunStatus) CanStart() bool {
	return s == StatusIdle || s.Terminal()
}

// RunState is the Runner's view of the current (or last) run.
type RunState struct {
	RunID     string        `json:"run_id,omitempty"`
	Status    RunStatus     `json:"status"`
	Kind      Kind          `json:"kind,omitempty"`
	StepCount int64         `json:"step_count"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Outcome   *Outcome      `json:"outcome,omitempty"`
	Fault     *Fault        `json:"fault,omitempty"`
}

// Idle returns the zero state a Runner starts in.
func Idle() RunState {
	return RunState{Status: StatusIdle}
}

// Clone returns a copy that shares nothing mutable with s.
func (s RunState) Clone() RunState {
	out := s
	if s.Outcome != nil {
		o := *s.Outcome
		o.Path = append([]string(nil), s.Outcome.Path...)
		o.Sequence = append([]string(nil), s.Outcome.Sequence...)
		out.Outcome = &o
	}
	if s.Fault != nil {
		f := *s.Fault
		out.Fault = &f
	}
	return out
}
