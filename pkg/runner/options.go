package runner

import (
	"log/slog"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/registry"
	"go.opentelemetry.io/otel/trace"
)

// Speed bounds and default, in milliseconds.
const (
	MinSpeedMS     = 100
	MaxSpeedMS     = 2000
	DefaultSpeedMS = 300
)

// DefaultChallenge is the countdown used in challenge mode.
const DefaultChallenge = 300 * time.Second

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithRegistry sets the algorithm catalog. Defaults to registry.Default().
func WithRegistry(reg *registry.Registry) Option {
	return func(r *Runner) {
		r.reg = reg
	}
}

// WithClock replaces the wall clock, e.g. with an InstantClock in tests.
func WithClock(c Clock) Option {
	return func(r *Runner) {
		r.clock = c
	}
}

// WithSpeed sets the initial inter-step delay. Out of range values are
// clamped.
func WithSpeed(ms int) Option {
	return func(r *Runner) {
		r.speed.Store(int64(clampSpeed(ms)))
	}
}

// WithPollInterval sets how often a paused run rechecks the gate.
func WithPollInterval(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.poll = d
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(h domain.LifecycleHooks) Option {
	return func(r *Runner) {
		r.hooks = h
	}
}

// WithCue attaches the advisory feedback collaborator.
func WithCue(c domain.Cue) Option {
	return func(r *Runner) {
		r.cue = c
	}
}

// WithTracer overrides the tracer used for run spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) {
		r.tracer = t
	}
}

// WithMode selects learning, quick or challenge pacing.
func WithMode(m Mode) Option {
	return func(r *Runner) {
		r.mode = m
	}
}

// WithChallenge sets the challenge countdown.
func WithChallenge(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.challenge = d
		}
	}
}

// WithIDGenerator overrides run id generation.
func WithIDGenerator(fn func() string) Option {
	return func(r *Runner) {
		r.newID = fn
	}
}

// WithLinger bounds how long the final update of a run waits for a full
// subscriber.
func WithLinger(d time.Duration) Option {
	return func(r *Runner) {
		r.linger = d
	}
}

func clampSpeed(ms int) int {
	return min(max(ms, MinSpeedMS), MaxSpeedMS)
}
