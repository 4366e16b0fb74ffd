package stepwise_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/registry"
	"github.com/aretw0/stepwise/pkg/runner"
	"github.com/aretw0/stepwise/pkg/viz"
)

// Example_runner follows a paced run through its subscription. The instant
// clock skips the delays.
func Example_runner() {
	c := viz.NewArray([]int{5, 3, 4, 1, 2})
	r := runner.New(runner.WithClock(runner.NewInstantClock(time.Unix(0, 0))))
	sub := r.Subscribe(runner.DefaultSubscriptionBuffer)
	defer sub.Close()

	ctx := context.Background()
	if _, err := r.Start(ctx, domain.KindInsertionSort, c, nil); err != nil {
		log.Fatal(err)
	}
	final, err := runner.Follow(ctx, sub, runner.HandlerFunc(func(context.Context, runner.Update) error { return nil }))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(final.Status, c.Values())
	// Output: completed [1 2 3 4 5]
}

// Example_execute runs a search to completion without pacing.
func Example_execute() {
	c := viz.NewArray([]int{1, 3, 5, 7, 9})
	proc, err := registry.Default().Prepare(domain.KindBinarySearch, c, map[string]any{"target": 7})
	if err != nil {
		log.Fatal(err)
	}
	res, err := runner.Execute(context.Background(), proc)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(runner.OutcomeLine(res.Outcome))
	// Output: found at 3, value 7
}
