package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/stepwise/pkg/algo"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/registry"
	"github.com/aretw0/stepwise/pkg/viz"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/aretw0/stepwise/pkg/runner"

// ElementBytes is the memory estimate charged per container element.
const ElementBytes = 8

// Runner drives one stepwise algorithm at a time over a container. It is
// the only component that changes RunState. A Runner is safe for concurrent
// use; commands may arrive from any goroutine while the step loop runs.
type Runner struct {
	reg       *registry.Registry
	logger    *slog.Logger
	clock     Clock
	poll      time.Duration
	hooks     domain.LifecycleHooks
	cue       domain.Cue
	tracer    trace.Tracer
	mode      Mode
	challenge time.Duration
	linger    time.Duration
	newID     func() string

	gate  PauseGate
	speed atomic.Int64

	mu        sync.Mutex
	state     domain.RunState
	stats     domain.Stats
	container viz.Container
	cancel    context.CancelFunc
	done      chan struct{}
	countdown *time.Timer

	subMu sync.Mutex
	subs  map[*Subscription]struct{}
}

// run is the private bookkeeping of one step loop.
type run struct {
	ctx    context.Context
	id     string
	kind   domain.Kind
	proc   algo.Procedure
	c      viz.Container
	start  time.Time
	base   uint64
	mode   Mode
	span   trace.Span
	done   chan struct{}
	cancel context.CancelFunc
}

// New creates an idle Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:     RealClock(),
		poll:      DefaultPollInterval,
		mode:      ModeLearning,
		challenge: DefaultChallenge,
		linger:    2 * time.Second,
		newID:     uuid.NewString,
		state:     domain.Idle(),
		subs:      make(map[*Subscription]struct{}),
	}
	r.speed.Store(DefaultSpeedMS)
	for _, opt := range opts {
		opt(r)
	}
	if r.reg == nil {
		r.reg = registry.Default()
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer(tracerName)
	}
	if r.cue != nil {
		r.cue = SafeCue(r.cue, r.logger)
	}
	return r
}

// Registry returns the algorithm catalog the Runner starts kinds from.
func (r *Runner) Registry() *registry.Registry { return r.reg }

// Start validates kind against c and begins stepping in the background.
// Validation errors leave the Runner untouched. Start fails with
// ErrAlreadyRunning while a run is running or paused. Containers with at
// most one element complete before Start returns.
//
// The run outlives ctx cancellation: use Cancel to stop it. ctx only
// contributes values such as the parent span.
func (r *Runner) Start(ctx context.Context, kind domain.Kind, c viz.Container, params map[string]any) (domain.RunState, error) {
	r.mu.Lock()
	if r.state.Status.Active() {
		st := r.state
		r.mu.Unlock()
		return domain.RunState{}, fmt.Errorf("%w: %s run %s is %s", domain.ErrAlreadyRunning, st.Kind, st.RunID, st.Status)
	}
	proc, err := r.reg.Prepare(kind, c, params)
	if err != nil {
		r.mu.Unlock()
		return domain.RunState{}, err
	}

	c.ClearRunFlags()
	c.Freeze()
	from := r.state.Status
	id := r.newID()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	runCtx, span := r.tracer.Start(runCtx, "stepwise.run", trace.WithAttributes(
		attribute.String("run.id", id),
		attribute.String("run.kind", string(kind)),
		attribute.Int("run.elements", c.Len()),
	))
	rn := &run{
		ctx:    runCtx,
		id:     id,
		kind:   kind,
		proc:   proc,
		c:      c,
		start:  r.clock.Now(),
		base:   uint64(c.Len()) * ElementBytes,
		mode:   r.mode,
		span:   span,
		done:   make(chan struct{}),
		cancel: cancel,
	}

	r.state = domain.RunState{RunID: id, Status: domain.StatusRunning, Kind: kind}
	r.stats = domain.Stats{MemoryEstimate: rn.base}
	r.container = c
	r.cancel = cancel
	r.done = rn.done
	r.gate.Resume()
	if rn.mode == ModeChallenge {
		r.countdown = time.AfterFunc(r.challenge, func() { r.expire(id) })
	}
	st, stats := r.state.Clone(), r.stats
	r.mu.Unlock()

	r.logger.Info("run started", "run_id", id, "kind", kind, "elements", c.Len(), "mode", rn.mode)
	r.emitStatus(runCtx, st, from)
	r.publish(runCtx, Update{State: st, Stats: stats, Frame: c.Frame()}, deliverCommand)

	if c.Len() <= 1 {
		r.loop(rn)
		return r.State(), nil
	}
	go r.loop(rn)
	return st, nil
}

func (r *Runner) loop(rn *run) {
	defer close(rn.done)

	var (
		out domain.Outcome
		err error
	)
	func() {
		defer func() {
			if p := recover(); p != nil {
				err = &domain.Fault{Kind: rn.kind, Step: r.State().StepCount, Message: fmt.Sprint(p)}
			}
		}()
		out, err = rn.proc.Run(func(s algo.Step) bool { return r.step(rn, s) })
	}()
	r.finish(rn, out, err)
}

// step publishes one visible step, then paces and honors the pause gate.
// It reports false once the run must stop.
func (r *Runner) step(rn *run, s algo.Step) bool {
	t := s.Tally
	t.AuxBytes += rn.base

	r.mu.Lock()
	r.stats = r.stats.Add(t).WithElapsed(r.clock.Now().Sub(rn.start))
	r.state.StepCount++
	r.state.Elapsed = r.stats.Elapsed
	st, stats := r.state.Clone(), r.stats
	r.mu.Unlock()

	ev := &domain.StepEvent{
		Timestamp: r.clock.Now(),
		RunID:     rn.id,
		Kind:      rn.kind,
		Index:     st.StepCount,
		Label:     s.Label,
		Stats:     stats,
	}
	rn.span.AddEvent("step", trace.WithAttributes(
		attribute.Int64("step.index", st.StepCount),
		attribute.String("step.label", s.Label),
	))
	if r.hooks.OnStep != nil {
		r.hooks.OnStep(rn.ctx, ev)
	}
	if r.cue != nil {
		_ = r.cue.Step(rn.ctx, ev)
	}
	r.publish(rn.ctx, Update{State: st, Stats: stats, Frame: rn.c.Frame(), Label: s.Label}, deliverStep)

	if err := r.clock.Sleep(rn.ctx, r.delay(rn.mode)); err != nil {
		return false
	}
	return r.gate.Wait(rn.ctx, r.clock, r.poll) == nil
}

func (r *Runner) delay(m Mode) time.Duration {
	if m == ModeQuick {
		return MinSpeedMS * time.Millisecond
	}
	return time.Duration(r.speed.Load()) * time.Millisecond
}

func (r *Runner) finish(rn *run, out domain.Outcome, err error) {
	defer rn.cancel()

	var fault *domain.Fault
	status := domain.StatusCompleted
	switch {
	case err == nil:
	case errors.Is(err, algo.ErrHalted):
		status = domain.StatusCancelled
	case errors.As(err, &fault):
		status = domain.StatusCancelled
	default:
		status = domain.StatusCancelled
		fault = &domain.Fault{Kind: rn.kind, Message: err.Error()}
	}

	r.mu.Lock()
	rn.c.Thaw()
	if r.countdown != nil {
		r.countdown.Stop()
		r.countdown = nil
	}
	from := r.state.Status
	r.stats = r.stats.WithElapsed(r.clock.Now().Sub(rn.start))
	r.state.Status = status
	r.state.Elapsed = r.stats.Elapsed
	if status == domain.StatusCompleted {
		r.state.Outcome = &out
	}
	if fault != nil {
		fault.Step = r.state.StepCount
		r.state.Fault = fault
	}
	r.gate.Resume()
	st, stats := r.state.Clone(), r.stats
	r.mu.Unlock()

	rn.span.SetAttributes(
		attribute.String("run.status", string(status)),
		attribute.Int64("run.steps", st.StepCount),
		attribute.Int64("run.operations", stats.Operations),
	)
	switch {
	case fault != nil:
		rn.span.RecordError(fault)
		rn.span.SetStatus(codes.Error, fault.Message)
		r.logger.Error("run faulted", "run_id", rn.id, "kind", rn.kind, "step", fault.Step, "err", fault)
		if r.hooks.OnFault != nil {
			r.hooks.OnFault(rn.ctx, fault)
		}
	case status == domain.StatusCompleted:
		r.logger.Info("run completed", "run_id", rn.id, "kind", rn.kind, "steps", st.StepCount, "operations", stats.Operations, "found", out.Found)
		if r.hooks.OnSuccess != nil {
			r.hooks.OnSuccess(rn.ctx, st)
		}
		if r.cue != nil {
			_ = r.cue.Success(rn.ctx, st)
		}
	default:
		r.logger.Info("run cancelled", "run_id", rn.id, "kind", rn.kind, "steps", st.StepCount)
	}
	rn.span.End()

	r.emitStatus(rn.ctx, st, from)
	r.publish(rn.ctx, Update{State: st, Stats: stats, Frame: rn.c.Frame()}, deliverFinal)
}

func (r *Runner) emitStatus(ctx context.Context, st domain.RunState, from domain.RunStatus) {
	if from == st.Status {
		return
	}
	trace.SpanFromContext(ctx).AddEvent("status", trace.WithAttributes(
		attribute.String("from", string(from)),
		attribute.String("to", string(st.Status)),
	))
	r.logger.Debug("status changed", "run_id", st.RunID, "from", from, "to", st.Status)
	if r.hooks.OnStatus != nil {
		r.hooks.OnStatus(ctx, &domain.StatusEvent{
			Timestamp: r.clock.Now(),
			RunID:     st.RunID,
			Kind:      st.Kind,
			From:      from,
			To:        st.Status,
		})
	}
}

// Pause closes the gate. Valid only while running; the step in progress
// completes first.
func (r *Runner) Pause() error {
	return r.toggle(domain.StatusRunning, domain.StatusPaused, r.gate.Pause)
}

// Resume reopens the gate. Valid only while paused.
func (r *Runner) Resume() error {
	return r.toggle(domain.StatusPaused, domain.StatusRunning, r.gate.Resume)
}

func (r *Runner) toggle(from, to domain.RunStatus, apply func()) error {
	r.mu.Lock()
	if r.state.Status != from {
		st := r.state.Status
		r.mu.Unlock()
		return fmt.Errorf("%w: cannot go from %s to %s", domain.ErrInvalidTransition, st, to)
	}
	apply()
	r.state.Status = to
	st, stats, c := r.state.Clone(), r.stats, r.container
	r.mu.Unlock()

	ctx := context.Background()
	r.emitStatus(ctx, st, from)
	r.publish(ctx, Update{State: st, Stats: stats, Frame: c.Frame()}, deliverCommand)
	return nil
}

// Cancel stops the active run at its next step boundary and waits for the
// loop to exit. The run ends cancelled unless it completed in the meantime.
// Cancel must not be called from a lifecycle hook or cue, which run on the
// step loop itself.
func (r *Runner) Cancel() error {
	r.mu.Lock()
	if !r.state.Status.Active() {
		st := r.state.Status
		r.mu.Unlock()
		return fmt.Errorf("%w: nothing to cancel while %s", domain.ErrInvalidTransition, st)
	}
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	cancel()
	<-done
	return nil
}

// expire is the challenge countdown callback.
func (r *Runner) expire(id string) {
	r.mu.Lock()
	active := r.state.RunID == id && r.state.Status.Active()
	r.mu.Unlock()
	if !active {
		return
	}
	r.logger.Info("challenge expired", "run_id", id)
	_ = r.Cancel()
}

// Reset clears stats and run flags and returns to idle. Rejected while a
// run is active. Resetting an idle Runner changes nothing.
func (r *Runner) Reset() error {
	r.mu.Lock()
	if r.state.Status.Active() {
		st := r.state.Status
		r.mu.Unlock()
		return fmt.Errorf("%w: cannot reset while %s", domain.ErrInvalidTransition, st)
	}
	from := r.state.Status
	r.state = domain.Idle()
	r.stats = domain.Stats{}
	c := r.container
	r.mu.Unlock()

	var frame *domain.Frame
	if c != nil {
		c.ClearRunFlags()
		frame = c.Frame()
	}
	if from != domain.StatusIdle {
		ctx := context.Background()
		st := domain.Idle()
		r.emitStatus(ctx, st, from)
		r.publish(ctx, Update{State: st, Frame: frame}, deliverCommand)
	}
	return nil
}

// SetSpeed changes the inter-step delay, effective from the next step.
func (r *Runner) SetSpeed(ms int) error {
	if ms < MinSpeedMS || ms > MaxSpeedMS {
		return fmt.Errorf("%w: speed must be in [%d, %d] ms, got %d", domain.ErrInvalidParams, MinSpeedMS, MaxSpeedMS, ms)
	}
	r.speed.Store(int64(ms))
	return nil
}

// Speed returns the inter-step delay in milliseconds.
func (r *Runner) Speed() int { return int(r.speed.Load()) }

// SetMode changes the pacing mode for the next run.
func (r *Runner) SetMode(m Mode) {
	r.mu.Lock()
	r.mode = m
	r.mu.Unlock()
}

// Wait blocks until the current run ends and returns its final state.
func (r *Runner) Wait(ctx context.Context) (domain.RunState, error) {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return r.State(), ctx.Err()
		}
	}
	return r.State(), nil
}

// State returns a copy of the current RunState.
func (r *Runner) State() domain.RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone()
}

// Stats returns the current counters.
func (r *Runner) Stats() domain.Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Container returns the container of the current or last run.
func (r *Runner) Container() viz.Container {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.container
}

// View returns the latest state, stats and a fresh snapshot.
func (r *Runner) View() Update {
	r.mu.Lock()
	u := Update{State: r.state.Clone(), Stats: r.stats}
	c := r.container
	r.mu.Unlock()
	if c != nil {
		u.Frame = c.Frame()
	}
	return u
}
