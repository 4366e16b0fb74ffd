package runner

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/viz"
)

// Update is what the presentation layer receives after every step and every
// status change: the run state, the stats and a snapshot of the container.
type Update struct {
	State domain.RunState `json:"state"`
	Stats domain.Stats    `json:"stats"`
	Frame *domain.Frame   `json:"frame,omitempty"`
	// Label describes the step that produced this update. Empty for status
	// changes.
	Label string `json:"label,omitempty"`
}

// DefaultSubscriptionBuffer is the channel capacity used by Subscribe.
const DefaultSubscriptionBuffer = 64

// Subscription delivers updates in the order they were produced. Step
// updates are never dropped: the step loop waits for a full subscriber
// until the run is cancelled or the subscription is closed. Status updates
// issued by commands are best effort and skipped when the buffer is full.
type Subscription struct {
	C <-chan Update

	ch     chan Update
	done   chan struct{}
	once   sync.Once
	remove func(*Subscription)
}

// Close detaches the subscription. C is not closed; stop reading instead.
func (s *Subscription) Close() {
	s.once.Do(func() {
		close(s.done)
		if s.remove != nil {
			s.remove(s)
		}
	})
}

// Done is closed by Close.
func (s *Subscription) Done() <-chan struct{} { return s.done }

type delivery int

const (
	// deliverStep blocks until the subscriber takes the update.
	deliverStep delivery = iota
	// deliverCommand never blocks.
	deliverCommand
	// deliverFinal blocks for at most the linger period.
	deliverFinal
)

func (s *Subscription) send(ctx context.Context, u Update, mode delivery, linger time.Duration) bool {
	switch mode {
	case deliverCommand:
		select {
		case s.ch <- u:
			return true
		case <-s.done:
		default:
		}
		return false
	case deliverFinal:
		t := time.NewTimer(linger)
		defer t.Stop()
		select {
		case s.ch <- u:
			return true
		case <-s.done:
		case <-t.C:
		}
		return false
	default:
		select {
		case s.ch <- u:
			return true
		case <-s.done:
		case <-ctx.Done():
		}
		return false
	}
}

// Subscribe registers a subscriber with the given buffer (at least 1).
func (r *Runner) Subscribe(buffer int) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Update, buffer)
	s := &Subscription{C: ch, ch: ch, done: make(chan struct{}), remove: r.unsubscribe}
	r.subMu.Lock()
	r.subs[s] = struct{}{}
	r.subMu.Unlock()
	return s
}

func (r *Runner) unsubscribe(s *Subscription) {
	r.subMu.Lock()
	delete(r.subs, s)
	r.subMu.Unlock()
}

// Announce sends the current state with a fresh frame of c to every
// subscriber. Callers use it after editing a container between runs.
// Delivery is best effort.
func (r *Runner) Announce(ctx context.Context, c viz.Container, label string) {
	u := r.View()
	if c != nil {
		u.Frame = c.Frame()
	}
	u.Label = label
	r.publish(ctx, u, deliverCommand)
}

func (r *Runner) publish(ctx context.Context, u Update, mode delivery) {
	r.subMu.Lock()
	subs := make([]*Subscription, 0, len(r.subs))
	for s := range r.subs {
		subs = append(subs, s)
	}
	r.subMu.Unlock()

	for _, s := range subs {
		if !s.send(ctx, u, mode, r.linger) && mode != deliverCommand {
			r.logger.Debug("update not delivered", "run_id", u.State.RunID, "status", u.State.Status)
		}
	}
}
