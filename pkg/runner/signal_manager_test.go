package runner

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/viz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalManager_Lifecycle(t *testing.T) {
	sm := NewSignalManager()
	defer sm.Stop()

	first := sm.Context()
	require.NoError(t, first.Err())

	sm.Reset()
	second := sm.Context()
	assert.ErrorIs(t, first.Err(), context.Canceled, "Reset releases the previous listener")
	assert.NoError(t, second.Err())

	sm.Stop()
	assert.ErrorIs(t, second.Err(), context.Canceled)
}

func TestSignalManager_CheckRace(t *testing.T) {
	sm := NewSignalManager()
	defer sm.Stop()

	start := time.Now()
	sm.CheckRace()
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	assert.Less(t, elapsed, time.Second)
}

func TestSignalManager_GuardCancelsRunThenExits(t *testing.T) {
	sm := NewSignalManager()
	defer sm.Stop()

	var r *Runner
	r = newTestRunner(t, WithLifecycleHooks(domain.LifecycleHooks{
		OnStep: func(ctx context.Context, ev *domain.StepEvent) {
			if ev.Index == 1 {
				_ = r.Pause()
			}
		},
	}))
	_, err := r.Start(context.Background(), domain.KindBubbleSort, viz.NewArray([]int{3, 2, 1}), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return r.State().Status == domain.StatusPaused }, time.Second, time.Millisecond)

	ctx := sm.Guard(context.Background(), r)

	// Simulate the first interrupt.
	interrupt(sm)
	require.Eventually(t, func() bool { return r.State().Status == domain.StatusCancelled }, time.Second, time.Millisecond)
	assert.NoError(t, ctx.Err(), "the first interrupt only stops the run")

	// Nothing is running now, so the next one ends the guard.
	require.Eventually(t, func() bool { return sm.Context().Err() == nil }, time.Second, time.Millisecond)
	interrupt(sm)
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("guard context was not cancelled")
	}
}

func interrupt(sm *SignalManager) {
	sm.mu.Lock()
	cancel := sm.cancel
	sm.mu.Unlock()
	cancel()
}
