/*
Package stepwise runs classic algorithms one visible step at a time.

Every algorithm is a procedure over an observable container (an array, a
grid, a graph, a tree, a table, a board or a population). A Runner drives the
procedure step by step with a configurable delay, and after every step
publishes an update carrying the run state, the operation counters and a
snapshot of the container. Presentation layers subscribe to those updates
and send commands back: pause, resume, reset, cancel and speed changes.

# Packages

  - pkg/viz: observable containers, generators and serializable specs.
  - pkg/algo: the algorithms, written as explicit-stack state machines.
  - pkg/registry: the catalog of algorithm kinds, their defaults and inputs.
  - pkg/runner: pacing, the pause gate, commands and subscriptions.
  - pkg/session: independent workspaces, each with its own Runner.
  - pkg/compare: batch comparisons over seeded inputs.
  - pkg/learn: learning cards for every algorithm.
  - pkg/adapters: HTTP (SSE and WebSocket), MCP and the preset stores.

# Usage

	c := viz.NewArray([]int{5, 3, 4, 1, 2})
	r := runner.New(runner.WithSpeed(200))
	sub := r.Subscribe(runner.DefaultSubscriptionBuffer)
	defer sub.Close()

	if _, err := r.Start(ctx, domain.KindQuickSort, c, nil); err != nil {
		log.Fatal(err)
	}
	for u := range sub.C {
		fmt.Println(runner.StatusLine(u))
		if u.State.Status.Terminal() {
			break
		}
	}

The stepwise command wraps the same pieces for the terminal (run, compare,
explain, list, graph, presets) and starts the HTTP and MCP servers.
*/
package stepwise
