package cli

import (
	"context"

	"github.com/aretw0/stepwise/internal/presentation/tui"
	"github.com/aretw0/stepwise/pkg/registry"
	"github.com/aretw0/stepwise/pkg/runner"
)

// RunSession executes a single run and follows it to the end.
func RunSession(ctx context.Context, opts RunOptions) error {
	opts = opts.withDefaults()
	params, err := opts.params()
	if err != nil {
		return err
	}
	term := terminalOf(opts.Out)
	if !opts.JSON && !opts.Headless {
		tui.PrintBanner(opts.Out, term.Profile)
	}
	return runOnce(ctx, opts, params, newPresenter(opts, term))
}

func runOnce(ctx context.Context, opts RunOptions, params map[string]any, p presenter) error {
	reg := registry.Default()
	c, kind, params, err := resolveInput(ctx, opts, reg, params)
	if err != nil {
		return err
	}
	r, err := newRunner(opts, reg)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The first Ctrl+C cancels the run; a second one while idle ends the session.
	sm := runner.NewSignalManager()
	defer sm.Stop()
	guarded := sm.Guard(runCtx, r)

	sub := r.Subscribe(runner.DefaultSubscriptionBuffer)
	defer sub.Close()

	if _, err := r.Start(guarded, kind, c, params); err != nil {
		return err
	}
	opts.Logger.Info("run started", "kind", kind, "elements", c.Len(), "mode", opts.Mode)

	if !opts.Headless {
		go func() {
			err := runner.Control(guarded, r, p, func(err error) {
				printSystemMessage(opts.Out, "%v", err)
			})
			if err != nil && !isInterrupted(err) {
				opts.Logger.Warn("command input stopped", "err", err)
			}
		}()
	}

	final, err := runner.Follow(guarded, sub, p)
	if err != nil {
		_ = r.Cancel()
		return handleExecutionError(err)
	}
	if !opts.JSON {
		logCompletion(opts.Out, final)
	}
	opts.Logger.Info("run finished", "kind", kind, "status", final.Status, "steps", final.StepCount)
	return nil
}
