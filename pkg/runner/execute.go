package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/stepwise/pkg/algo"
	"github.com/aretw0/stepwise/pkg/domain"
)

// Result is the outcome of an unpaced batch execution.
type Result struct {
	Outcome domain.Outcome `json:"outcome"`
	Stats   domain.Stats   `json:"stats"`
	Steps   int64          `json:"steps"`
}

// Execute runs p to completion without pacing, pausing or publishing. It
// stops at the next step boundary once ctx is done. A panic inside the
// procedure is returned as a *domain.Fault.
func Execute(ctx context.Context, p algo.Procedure) (res Result, err error) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err = &domain.Fault{Kind: p.Kind(), Step: res.Steps, Message: fmt.Sprint(rec)}
		}
		res.Stats = res.Stats.WithElapsed(time.Since(start))
	}()

	res.Outcome, err = p.Run(func(s algo.Step) bool {
		res.Steps++
		res.Stats = res.Stats.Add(s.Tally)
		return ctx.Err() == nil
	})
	if err != nil && ctx.Err() != nil {
		err = fmt.Errorf("%s: %w: %w", p.Kind(), err, ctx.Err())
	}
	return res, err
}
