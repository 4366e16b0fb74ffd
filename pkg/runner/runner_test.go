package runner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/stepwise/pkg/algo"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/registry"
	"github.com/aretw0/stepwise/pkg/viz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestRunner(t *testing.T, opts ...Option) *Runner {
	t.Helper()
	base := []Option{WithClock(NewInstantClock(time.Unix(0, 0))), WithPollInterval(time.Millisecond)}
	return New(append(base, opts...)...)
}

func waitDone(t *testing.T, r *Runner) domain.RunState {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st, err := r.Wait(ctx)
	require.NoError(t, err)
	return st
}

func TestRunner_BubbleSortCompletes(t *testing.T) {
	r := newTestRunner(t)
	a := viz.NewArray([]int{5, 3, 4, 1, 2})

	st, err := r.Start(context.Background(), domain.KindBubbleSort, a, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, st.Status)
	assert.NotEmpty(t, st.RunID)

	final := waitDone(t, r)
	assert.Equal(t, domain.StatusCompleted, final.Status)
	require.NotNil(t, final.Outcome)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, a.Values())

	stats := r.Stats()
	assert.EqualValues(t, 10, stats.Operations)
	assert.EqualValues(t, 10, stats.Comparisons)
	assert.GreaterOrEqual(t, stats.MemoryEstimate, uint64(5*ElementBytes))
	assert.Equal(t, final.StepCount, r.State().StepCount)
}

func TestRunner_StartRejectsSecondRun(t *testing.T) {
	release := make(chan struct{})
	var r *Runner
	r = newTestRunner(t, WithLifecycleHooks(domain.LifecycleHooks{
		OnStep: func(ctx context.Context, ev *domain.StepEvent) {
			if ev.Index == 1 {
				<-release
			}
		},
	}))

	_, err := r.Start(context.Background(), domain.KindBubbleSort, viz.NewArray([]int{3, 2, 1}), nil)
	require.NoError(t, err)

	_, err = r.Start(context.Background(), domain.KindBubbleSort, viz.NewArray([]int{3, 2, 1}), nil)
	assert.ErrorIs(t, err, domain.ErrAlreadyRunning)

	close(release)
	assert.Equal(t, domain.StatusCompleted, waitDone(t, r).Status)

	_, err = r.Start(context.Background(), domain.KindBubbleSort, viz.NewArray([]int{2, 1}), nil)
	require.NoError(t, err, "a finished runner accepts a new run")
	waitDone(t, r)
}

func TestRunner_StartValidation(t *testing.T) {
	r := newTestRunner(t)

	_, err := r.Start(context.Background(), domain.Kind("bogo-sort"), viz.NewArray([]int{1, 2}), nil)
	assert.ErrorIs(t, err, domain.ErrUnknownAlgorithm)

	_, err = r.Start(context.Background(), domain.KindBinarySearch, viz.NewArray([]int{1, 2}), nil)
	assert.ErrorIs(t, err, domain.ErrMissingPrerequisite)

	_, err = r.Start(context.Background(), domain.KindDijkstra, viz.NewArray([]int{1, 2}), nil)
	assert.ErrorIs(t, err, domain.ErrFamilyMismatch)

	assert.Equal(t, domain.StatusIdle, r.State().Status, "validation errors leave the runner idle")
}

func TestRunner_PauseResume(t *testing.T) {
	var r *Runner
	r = newTestRunner(t, WithLifecycleHooks(domain.LifecycleHooks{
		OnStep: func(ctx context.Context, ev *domain.StepEvent) {
			if ev.Index == 3 {
				assert.NoError(t, r.Pause())
			}
		},
	}))

	a := viz.NewArray([]int{9, 8, 7, 6, 5, 4})
	_, err := r.Start(context.Background(), domain.KindBubbleSort, a, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return r.State().Status == domain.StatusPaused
	}, 2*time.Second, time.Millisecond)

	steps := r.State().StepCount
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, steps, r.State().StepCount, "no steps while paused")
	assert.EqualValues(t, 3, steps)

	assert.ErrorIs(t, r.Pause(), domain.ErrInvalidTransition)
	require.NoError(t, r.Resume())
	assert.ErrorIs(t, r.Resume(), domain.ErrInvalidTransition)

	final := waitDone(t, r)
	assert.Equal(t, domain.StatusCompleted, final.Status)
	assert.Equal(t, []int{4, 5, 6, 7, 8, 9}, a.Values())
}

func TestRunner_Cancel(t *testing.T) {
	var r *Runner
	r = newTestRunner(t, WithLifecycleHooks(domain.LifecycleHooks{
		OnStep: func(ctx context.Context, ev *domain.StepEvent) {
			if ev.Index == 2 {
				_ = r.Pause()
			}
		},
	}))

	a := viz.NewArray([]int{4, 3, 2, 1})
	_, err := r.Start(context.Background(), domain.KindBubbleSort, a, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return r.State().Status == domain.StatusPaused
	}, 2*time.Second, time.Millisecond)

	require.NoError(t, r.Cancel())
	st := r.State()
	assert.Equal(t, domain.StatusCancelled, st.Status)
	assert.Nil(t, st.Outcome)
	assert.Nil(t, st.Fault)
	assert.EqualValues(t, 2, st.StepCount)

	assert.ErrorIs(t, r.Cancel(), domain.ErrInvalidTransition)
	assert.NoError(t, a.Load([]int{1, 2}), "the container is editable once the run ends")
}

func TestRunner_Reset(t *testing.T) {
	r := newTestRunner(t)
	require.NoError(t, r.Reset(), "reset on idle is a no-op")
	assert.Equal(t, domain.StatusIdle, r.State().Status)

	a := viz.NewArray([]int{3, 1, 2})
	_, err := r.Start(context.Background(), domain.KindBubbleSort, a, nil)
	require.NoError(t, err)
	waitDone(t, r)
	require.NotZero(t, r.Stats().Operations)

	require.NoError(t, r.Reset())
	require.NoError(t, r.Reset())
	assert.Equal(t, domain.Idle(), r.State())
	assert.Equal(t, domain.Stats{}, r.Stats())
	for _, e := range r.View().Frame.Elements {
		assert.Zero(t, e.Flags&domain.RunFlags, "run flags are cleared on %s", e.ID)
	}
}

func TestRunner_ResetWhileActive(t *testing.T) {
	release := make(chan struct{})
	r := newTestRunner(t, WithLifecycleHooks(domain.LifecycleHooks{
		OnStep: func(ctx context.Context, ev *domain.StepEvent) {
			if ev.Index == 1 {
				<-release
			}
		},
	}))
	_, err := r.Start(context.Background(), domain.KindBubbleSort, viz.NewArray([]int{2, 1, 0}), nil)
	require.NoError(t, err)

	assert.ErrorIs(t, r.Reset(), domain.ErrInvalidTransition)
	close(release)
	waitDone(t, r)
}

type explodingProc struct{}

func (explodingProc) Kind() domain.Kind { return "explode" }

func (explodingProc) Run(yield algo.Yield) (domain.Outcome, error) {
	yield(algo.Step{Label: "fuse lit", Tally: domain.Tally{Ops: 1}})
	panic("boom")
}

func TestRunner_FaultEndsCancelled(t *testing.T) {
	reg := registry.New()
	reg.Register(registry.Entry{
		Kind:   "explode",
		Family: domain.FamilyArray,
		Build: func(c viz.Container, _ map[string]any) (algo.Procedure, error) {
			return explodingProc{}, nil
		},
	})

	var faults atomic.Int32
	r := newTestRunner(t, WithRegistry(reg), WithLifecycleHooks(domain.LifecycleHooks{
		OnFault: func(ctx context.Context, f *domain.Fault) { faults.Add(1) },
	}))

	_, err := r.Start(context.Background(), "explode", viz.NewArray([]int{1, 2, 3}), nil)
	require.NoError(t, err)
	st := waitDone(t, r)

	assert.Equal(t, domain.StatusCancelled, st.Status)
	require.NotNil(t, st.Fault)
	assert.Equal(t, "boom", st.Fault.Message)
	assert.EqualValues(t, 1, st.Fault.Step)
	assert.EqualValues(t, 1, faults.Load())
}

func TestRunner_SingletonCompletesImmediately(t *testing.T) {
	r := newTestRunner(t)
	st, err := r.Start(context.Background(), domain.KindBubbleSort, viz.NewArray([]int{42}), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, st.Status)
	assert.Zero(t, st.StepCount)
	assert.Zero(t, r.Stats().Operations)
}

func TestRunner_Speed(t *testing.T) {
	r := newTestRunner(t)
	assert.Equal(t, DefaultSpeedMS, r.Speed())

	require.NoError(t, r.SetSpeed(MinSpeedMS))
	require.NoError(t, r.SetSpeed(MaxSpeedMS))
	assert.Equal(t, MaxSpeedMS, r.Speed())
	assert.ErrorIs(t, r.SetSpeed(MinSpeedMS-1), domain.ErrInvalidParams)
	assert.ErrorIs(t, r.SetSpeed(MaxSpeedMS+1), domain.ErrInvalidParams)
	assert.Equal(t, MaxSpeedMS, r.Speed())

	assert.Equal(t, MinSpeedMS, New(WithSpeed(1)).Speed(), "options clamp")
}

func TestRunner_PacingUsesClock(t *testing.T) {
	clock := NewInstantClock(time.Unix(0, 0))
	r := New(WithClock(clock), WithSpeed(250))

	_, err := r.Start(context.Background(), domain.KindBubbleSort, viz.NewArray([]int{3, 2, 1}), nil)
	require.NoError(t, err)
	st := waitDone(t, r)

	slept, calls := clock.Slept()
	assert.EqualValues(t, st.StepCount, calls)
	assert.Equal(t, time.Duration(st.StepCount)*250*time.Millisecond, slept)

	r.SetMode(ModeQuick)
	_, err = r.Start(context.Background(), domain.KindBubbleSort, viz.NewArray([]int{2, 1}), nil)
	require.NoError(t, err)
	waitDone(t, r)
	after, _ := clock.Slept()
	assert.Equal(t, MinSpeedMS*time.Millisecond, after-slept, "quick mode steps at the minimum delay")
}

func TestRunner_ChallengeExpires(t *testing.T) {
	r := New(WithMode(ModeChallenge), WithChallenge(30*time.Millisecond), WithSpeed(MinSpeedMS))

	_, err := r.Start(context.Background(), domain.KindBubbleSort, viz.NewArray([]int{9, 8, 7, 6, 5, 4, 3, 2, 1}), nil)
	require.NoError(t, err)
	st := waitDone(t, r)
	assert.Equal(t, domain.StatusCancelled, st.Status)
	assert.Nil(t, st.Fault)
}

func TestRunner_SubscriberSeesOrderedUpdates(t *testing.T) {
	r := newTestRunner(t)
	sub := r.Subscribe(1)
	defer sub.Close()

	_, err := r.Start(context.Background(), domain.KindInsertionSort, viz.NewArray([]int{4, 1, 3, 2}), nil)
	require.NoError(t, err)

	var got []Update
	final, err := Follow(context.Background(), sub, HandlerFunc(func(_ context.Context, u Update) error {
		got = append(got, u)
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, final.Status)

	require.GreaterOrEqual(t, len(got), 3)
	assert.Equal(t, domain.StatusRunning, got[0].State.Status)
	assert.Zero(t, got[0].State.StepCount)
	for i := 1; i < len(got)-1; i++ {
		assert.Equal(t, got[i-1].State.StepCount+1, got[i].State.StepCount, "update %d", i)
		assert.NotEmpty(t, got[i].Label)
		require.NotNil(t, got[i].Frame)
		assert.GreaterOrEqual(t, got[i].Stats.Operations, got[i-1].Stats.Operations)
	}
	assert.Equal(t, final.StepCount, got[len(got)-1].State.StepCount)
}

func TestRunner_ClosedSubscriberDoesNotStall(t *testing.T) {
	r := newTestRunner(t)
	sub := r.Subscribe(1)
	sub.Close()

	_, err := r.Start(context.Background(), domain.KindBubbleSort, viz.NewArray([]int{5, 4, 3, 2, 1}), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, waitDone(t, r).Status)
}

type countingCue struct {
	steps, wins atomic.Int32
	fail        bool
}

func (c *countingCue) Step(ctx context.Context, ev *domain.StepEvent) error {
	c.steps.Add(1)
	if c.fail {
		panic("speaker unplugged")
	}
	return nil
}

func (c *countingCue) Success(ctx context.Context, st domain.RunState) error {
	c.wins.Add(1)
	return errors.New("no audio device")
}

func TestRunner_CueFailuresAreIgnored(t *testing.T) {
	ok, broken := &countingCue{}, &countingCue{fail: true}
	r := newTestRunner(t, WithCue(MultiCue(ok, broken)))

	_, err := r.Start(context.Background(), domain.KindBubbleSort, viz.NewArray([]int{2, 3, 1}), nil)
	require.NoError(t, err)
	st := waitDone(t, r)

	assert.Equal(t, domain.StatusCompleted, st.Status)
	assert.EqualValues(t, st.StepCount, ok.steps.Load())
	assert.EqualValues(t, 1, ok.wins.Load())
	assert.EqualValues(t, 1, broken.wins.Load())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeLearning, m)

	m, err = ParseMode("challenge")
	require.NoError(t, err)
	assert.Equal(t, ModeChallenge, m)

	_, err = ParseMode("turbo")
	assert.ErrorIs(t, err, domain.ErrInvalidParams)
}

func TestRunner_RecordsRunSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	r := newTestRunner(t, WithTracer(tp.Tracer("test")))
	_, err := r.Start(context.Background(), domain.KindInsertionSort, viz.NewArray([]int{3, 2, 1}), nil)
	require.NoError(t, err)
	final := waitDone(t, r)

	// The span ends just after the final state is visible.
	require.Eventually(t, func() bool { return len(exporter.GetSpans()) == 1 }, 2*time.Second, 5*time.Millisecond)
	span := exporter.GetSpans()[0]
	assert.Equal(t, "stepwise.run", span.Name)

	var steps int64
	for _, ev := range span.Events {
		if ev.Name == "step" {
			steps++
		}
	}
	assert.Equal(t, final.StepCount, steps)

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "completed", attrs["run.status"].AsString())
	assert.Equal(t, final.StepCount, attrs["run.steps"].AsInt64())
}
