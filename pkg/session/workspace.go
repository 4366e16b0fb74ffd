package session

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/runner"
	"github.com/aretw0/stepwise/pkg/viz"
)

// Workspace is one sandbox: a Runner, its current container and the last
// algorithm chosen for it.
type Workspace struct {
	ID      string
	Created time.Time

	runner *runner.Runner
	rng    *rand.Rand

	mu        sync.RWMutex
	container viz.Container
	kind      domain.Kind
	params    map[string]any
}

// Info is the listing view of a workspace.
type Info struct {
	ID      string           `json:"id"`
	Created time.Time        `json:"created"`
	Kind    domain.Kind      `json:"kind,omitempty"`
	Family  domain.Family    `json:"family,omitempty"`
	Status  domain.RunStatus `json:"status"`
}

// Runner returns the workspace runner.
func (w *Workspace) Runner() *runner.Runner { return w.runner }

// Container returns the current container, or nil before one is set.
func (w *Workspace) Container() viz.Container {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.container
}

// Selection returns the last kind and params used or loaded.
func (w *Workspace) Selection() (domain.Kind, map[string]any) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.kind, w.params
}

func (w *Workspace) set(c viz.Container, kind domain.Kind, params map[string]any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.container = c
	if kind != "" {
		w.kind = kind
		w.params = params
	}
}

// Info summarizes the workspace.
func (w *Workspace) Info() Info {
	w.mu.RLock()
	defer w.mu.RUnlock()
	info := Info{ID: w.ID, Created: w.Created, Kind: w.kind, Status: w.runner.State().Status}
	if w.container != nil {
		info.Family = w.container.Family()
	}
	return info
}
