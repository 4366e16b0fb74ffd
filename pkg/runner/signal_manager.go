package runner

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
)

// SignalManager turns SIGINT and SIGTERM into context cancellation.
type SignalManager struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	notify []os.Signal
}

// NewSignalManager creates a new manager and immediately starts listening for signals.
func NewSignalManager() *SignalManager {
	sm := &SignalManager{notify: []os.Signal{os.Interrupt, syscall.SIGTERM}}
	sm.Reset()
	return sm
}

// Context returns the current signal context.
func (sm *SignalManager) Context() context.Context {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.ctx
}

// Reset re-arms the listener after a signal has been handled.
func (sm *SignalManager) Reset() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.cancel != nil {
		sm.cancel()
	}
	sm.ctx, sm.cancel = signal.NotifyContext(context.Background(), sm.notify...)
}

// Stop permanently stops the signal listener.
func (sm *SignalManager) Stop() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.cancel != nil {
		sm.cancel()
	}
}

// CheckRace waits briefly to see if a signal follows an input error.
// On some terminals Ctrl+C surfaces as EOF on stdin slightly before the
// signal is delivered.
func (sm *SignalManager) CheckRace() {
	ctx := sm.Context()
	if ctx.Err() == nil {
		select {
		case <-ctx.Done():
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// Guard cancels the active run on the first interrupt and re-arms. An
// interrupt while nothing is running cancels the returned context, which
// callers treat as a request to exit. Guard returns when ctx is done.
func (sm *SignalManager) Guard(ctx context.Context, r *Runner) context.Context {
	out, stop := context.WithCancel(ctx)
	go func() {
		defer stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-sm.Context().Done():
			}
			if err := r.Cancel(); errors.Is(err, domain.ErrInvalidTransition) {
				return
			}
			r.logger.Info("run interrupted")
			sm.Reset()
		}
	}()
	return out
}
