package runner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiCue_JoinsErrors(t *testing.T) {
	var order []string
	a := CueFuncs{OnStep: func(ctx context.Context, ev *domain.StepEvent) error {
		order = append(order, "a")
		return errors.New("a failed")
	}}
	b := CueFuncs{OnStep: func(ctx context.Context, ev *domain.StepEvent) error {
		order = append(order, "b")
		return nil
	}}

	err := MultiCue(a, b).Step(context.Background(), &domain.StepEvent{})
	assert.EqualError(t, err, "a failed")
	assert.Equal(t, []string{"a", "b"}, order)
	assert.NoError(t, MultiCue(a, b).Success(context.Background(), domain.RunState{}), "nil funcs are no-ops")
}

func TestSafeCue(t *testing.T) {
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c := SafeCue(CueFuncs{
		OnStep: func(ctx context.Context, ev *domain.StepEvent) error { panic("no speaker") },
		OnSuccess: func(ctx context.Context, st domain.RunState) error {
			return errors.New("muted")
		},
	}, logger)

	assert.NoError(t, c.Step(context.Background(), &domain.StepEvent{}))
	assert.NoError(t, c.Success(context.Background(), domain.RunState{}))
	assert.Contains(t, logs.String(), "cue panicked")
	assert.Contains(t, logs.String(), "muted")

	w, ok := SafeCue(c, logger).(safeCue)
	require.True(t, ok)
	assert.IsType(t, CueFuncs{}, w.next, "wrapping twice does not nest")
}
