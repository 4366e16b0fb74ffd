package runner

import (
	"context"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Handler presents updates. TextHandler draws them for people,
// JSONHandler streams them as JSON lines for programs.
type Handler interface {
	Handle(ctx context.Context, u Update) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, u Update) error

func (f HandlerFunc) Handle(ctx context.Context, u Update) error { return f(ctx, u) }

// Follow hands every update from sub to h until one carries a terminal
// status, then returns that state. It returns early when ctx is done, when
// sub is closed or when h fails.
func Follow(ctx context.Context, sub *Subscription, h Handler) (domain.RunState, error) {
	for {
		select {
		case <-ctx.Done():
			return domain.RunState{}, ctx.Err()
		case <-sub.Done():
			return domain.RunState{}, context.Canceled
		case u := <-sub.C:
			if err := h.Handle(ctx, u); err != nil {
				return u.State, err
			}
			if u.State.Status.Terminal() {
				return u.State, nil
			}
		}
	}
}
