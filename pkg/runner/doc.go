/*
Package runner drives stepwise algorithms for presentation.

A Runner owns the run lifecycle (idle, running, paused, completed,
cancelled) of one container at a time. Each step is paced by a Clock,
gated by a PauseGate and published to subscribers as an Update carrying
the RunState, the Stats and a Frame of the container.

# Key Components

  - Runner: starts, pauses, resumes, cancels and resets runs.
  - Subscription: ordered delivery of updates to a presentation layer.
  - Handler: TextHandler draws updates on a terminal, JSONHandler streams
    them as JSON lines. Both also read Commands for Control.
  - Execute: unpaced batch execution used by comparisons.

# Usage

	r := runner.New(runner.WithLogger(logger), runner.WithSpeed(200))
	sub := r.Subscribe(runner.DefaultSubscriptionBuffer)
	defer sub.Close()

	if _, err := r.Start(ctx, domain.KindQuickSort, viz.NewArray(values), nil); err != nil {
		return err
	}
	h := runner.NewTextHandler(os.Stdin, os.Stdout)
	go runner.Control(ctx, r, h, nil)
	final, err := runner.Follow(ctx, sub, h)
*/
package runner
