package tui

import (
	"context"
	"io"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Bell is a terminal Cue: it rings the bell when a run completes and,
// optionally, ticks on every step.
type Bell struct {
	W     io.Writer
	Ticks bool
}

func (b Bell) Step(_ context.Context, _ *domain.StepEvent) error {
	if !b.Ticks {
		return nil
	}
	_, err := io.WriteString(b.W, "\a")
	return err
}

func (b Bell) Success(_ context.Context, _ domain.RunState) error {
	_, err := io.WriteString(b.W, "\a")
	return err
}
