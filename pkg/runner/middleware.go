package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/stepwise/pkg/domain"
)

// CueFuncs adapts plain functions to domain.Cue. Nil fields are no-ops.
type CueFuncs struct {
	OnStep    func(ctx context.Context, ev *domain.StepEvent) error
	OnSuccess func(ctx context.Context, st domain.RunState) error
}

func (f CueFuncs) Step(ctx context.Context, ev *domain.StepEvent) error {
	if f.OnStep == nil {
		return nil
	}
	return f.OnStep(ctx, ev)
}

func (f CueFuncs) Success(ctx context.Context, st domain.RunState) error {
	if f.OnSuccess == nil {
		return nil
	}
	return f.OnSuccess(ctx, st)
}

// MultiCue fans events out to every cue. All cues are called; their errors
// are joined.
func MultiCue(cues ...domain.Cue) domain.Cue {
	return multiCue(cues)
}

type multiCue []domain.Cue

func (m multiCue) Step(ctx context.Context, ev *domain.StepEvent) error {
	var errs []error
	for _, c := range m {
		errs = append(errs, c.Step(ctx, ev))
	}
	return errors.Join(errs...)
}

func (m multiCue) Success(ctx context.Context, st domain.RunState) error {
	var errs []error
	for _, c := range m {
		errs = append(errs, c.Success(ctx, st))
	}
	return errors.Join(errs...)
}

// SafeCue shields a run from its cue: errors are logged at debug level and
// panics are recovered. The returned cue always reports success.
func SafeCue(c domain.Cue, logger *slog.Logger) domain.Cue {
	if _, ok := c.(safeCue); ok {
		return c
	}
	return safeCue{next: c, logger: logger}
}

type safeCue struct {
	next   domain.Cue
	logger *slog.Logger
}

func (s safeCue) Step(ctx context.Context, ev *domain.StepEvent) (err error) {
	defer s.recover("step", &err)
	if err := s.next.Step(ctx, ev); err != nil {
		s.logger.Debug("cue failed", "event", "step", "err", err)
	}
	return nil
}

func (s safeCue) Success(ctx context.Context, st domain.RunState) (err error) {
	defer s.recover("success", &err)
	if err := s.next.Success(ctx, st); err != nil {
		s.logger.Debug("cue failed", "event", "success", "err", err)
	}
	return nil
}

func (s safeCue) recover(event string, err *error) {
	if p := recover(); p != nil {
		s.logger.Warn("cue panicked", "event", event, "err", fmt.Sprint(p))
		*err = nil
	}
}
