package registry

import (
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/aretw0/stepwise/pkg/algo"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/viz"
	"github.com/mitchellh/mapstructure"
)

// BuildFunc binds an algorithm to a container. It validates prerequisites
// and must not mutate the container.
type BuildFunc func(c viz.Container, params map[string]any) (algo.Procedure, error)

// Entry describes one algorithm kind.
type Entry struct {
	Kind     domain.Kind     `json:"kind"`
	Family   domain.Family   `json:"family"`
	Accepts  []domain.Family `json:"accepts"`
	Title    string          `json:"title"`
	Summary  string          `json:"summary"`
	Time     string          `json:"time"`
	Space    string          `json:"space"`
	Requires []string        `json:"requires,omitempty"`
	Defaults map[string]any  `json:"defaults,omitempty"`

	Build BuildFunc `json:"-"`

	// Input derives the container from params for kinds whose shape is
	// defined by their parameters (DP tables, factorial).
	Input func(params map[string]any) (viz.Container, error) `json:"-"`

	// Sample generates a seeded input of the given size with matching
	// params. Kinds with a Sample can be compared.
	Sample func(rng *rand.Rand, size int) (viz.Container, map[string]any) `json:"-"`
}

// Comparable reports whether the kind can take part in batch comparisons.
func (e Entry) Comparable() bool { return e.Sample != nil }

// Supports reports whether the kind runs on containers of family f.
func (e Entry) Supports(f domain.Family) bool {
	return slices.Contains(e.Accepts, f)
}

// Registry manages the available algorithms.
type Registry struct {
	mu      sync.RWMutex
	entries map[domain.Kind]Entry
	order   []domain.Kind
}

// New creates a new empty registry.
func New() *Registry {
	return &Registry{entries: make(map[domain.Kind]Entry)}
}

// Register adds an entry to the registry.
// If an entry with the same kind exists, it is overwritten.
func (r *Registry) Register(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(e.Accepts) == 0 {
		e.Accepts = []domain.Family{e.Family}
	}
	if _, exists := r.entries[e.Kind]; !exists {
		r.order = append(r.order, e.Kind)
	}
	r.entries[e.Kind] = e
}

// Lookup returns the entry for kind.
func (r *Registry) Lookup(kind domain.Kind) (Entry, error) {
	r.mu.RLock()
	e, ok := r.entries[kind]
	r.mu.RUnlock()
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", domain.ErrUnknownAlgorithm, kind)
	}
	return e, nil
}

// List returns every entry in registration order.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.entries[k])
	}
	return out
}

// Prepare looks kind up, checks the container family, merges default params
// and builds the procedure.
func (r *Registry) Prepare(kind domain.Kind, c viz.Container, params map[string]any) (algo.Procedure, error) {
	e, err := r.Lookup(kind)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%s: %w: no container", kind, domain.ErrMissingPrerequisite)
	}
	if !e.Supports(c.Family()) {
		return nil, fmt.Errorf("%s: %w: got %s, want %v", kind, domain.ErrFamilyMismatch, c.Family(), e.Accepts)
	}
	return e.Build(c, MergeParams(e.Defaults, params))
}

// Input builds the default container for kind: derived from params when the
// kind defines its own shape, otherwise a seeded sample of size n.
func (r *Registry) Input(kind domain.Kind, params map[string]any, rng *rand.Rand, n int) (viz.Container, map[string]any, error) {
	e, err := r.Lookup(kind)
	if err != nil {
		return nil, nil, err
	}
	merged := MergeParams(e.Defaults, params)
	switch {
	case e.Input != nil:
		c, err := e.Input(merged)
		return c, merged, err
	case e.Sample != nil:
		c, sampled := e.Sample(rng, n)
		return c, MergeParams(sampled, params), nil
	default:
		return nil, nil, fmt.Errorf("%s: %w: no default input", kind, domain.ErrMissingPrerequisite)
	}
}

// MergeParams overlays over on a copy of base.
func MergeParams(base, over map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(over))
	maps.Copy(out, base)
	maps.Copy(out, over)
	return out
}

// Decode converts loosely typed params (JSON numbers, CLI strings) into out.
func Decode(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      false,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidParams, err)
	}
	return nil
}
