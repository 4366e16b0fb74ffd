// Package compare measures several algorithms of one family over a range of
// input sizes, without pacing, and reports the counters side by side.
package compare

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"slices"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/registry"
	"github.com/aretw0/stepwise/pkg/runner"
	"github.com/aretw0/stepwise/pkg/viz"
	"golang.org/x/sync/errgroup"
)

// DefaultSizes are used when a request names none.
var DefaultSizes = []int{10, 50, 100, 500, 1000}

// Request selects what to compare.
type Request struct {
	Kinds []domain.Kind `json:"kinds" validate:"min=2,dive,required"`
	Sizes []int         `json:"sizes,omitempty" validate:"omitempty,dive,min=1,max=100000"`
	// Seed makes inputs reproducible. Every algorithm sees the input drawn
	// from Seed+size for a given size.
	Seed uint64 `json:"seed"`
}

// Row is the measurement of one (algorithm, size) pair.
type Row struct {
	Kind        domain.Kind   `json:"kind"`
	Size        int           `json:"size"`
	Steps       int64         `json:"steps"`
	Operations  int64         `json:"operations"`
	Comparisons int64         `json:"comparisons"`
	Mutations   int64         `json:"mutations"`
	Elapsed     time.Duration `json:"elapsed_ns"`
	Memory      uint64        `json:"memory_estimate"`
	Found       bool          `json:"found"`
}

// Report holds every row, ordered by kind (request order) then size.
type Report struct {
	Family domain.Family `json:"family"`
	Kinds  []domain.Kind `json:"kinds"`
	Sizes  []int         `json:"sizes"`
	Rows   []Row         `json:"rows"`
}

// Get returns the row for kind at size.
func (r *Report) Get(kind domain.Kind, size int) (Row, bool) {
	for _, row := range r.Rows {
		if row.Kind == kind && row.Size == size {
			return row, true
		}
	}
	return Row{}, false
}

// Comparer runs comparisons.
type Comparer struct {
	reg     *registry.Registry
	logger  *slog.Logger
	workers int
}

// Option configures a Comparer.
type Option func(*Comparer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Comparer) {
		c.logger = logger
	}
}

// WithRegistry sets the algorithm catalog.
func WithRegistry(reg *registry.Registry) Option {
	return func(c *Comparer) {
		c.reg = reg
	}
}

// WithWorkers bounds how many measurements run at once.
func WithWorkers(n int) Option {
	return func(c *Comparer) {
		if n > 0 {
			c.workers = n
		}
	}
}

// New creates a Comparer.
func New(opts ...Option) *Comparer {
	c := &Comparer{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.reg == nil {
		c.reg = registry.Default()
	}
	return c
}

// Run measures every requested kind at every size. It needs at least two
// distinct comparable kinds of the same family.
func (c *Comparer) Run(ctx context.Context, req Request) (*Report, error) {
	kinds, family, err := c.check(req.Kinds)
	if err != nil {
		return nil, err
	}
	sizes := req.Sizes
	if len(sizes) == 0 {
		sizes = DefaultSizes
	}
	for _, n := range sizes {
		if n <= 0 {
			return nil, fmt.Errorf("%w: size %d", domain.ErrEmptyContainer, n)
		}
	}

	rep := &Report{Family: family, Kinds: kinds, Sizes: slices.Clone(sizes)}
	rep.Rows = make([]Row, len(kinds)*len(sizes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for ki, kind := range kinds {
		for si, size := range sizes {
			slot := &rep.Rows[ki*len(sizes)+si]
			g.Go(func() error {
				row, err := c.measure(gctx, kind, size, req.Seed)
				if err != nil {
					return err
				}
				*slot = row
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	c.logger.Info("comparison finished", "family", family, "kinds", kinds, "sizes", sizes)
	return rep, nil
}

func (c *Comparer) check(requested []domain.Kind) ([]domain.Kind, domain.Family, error) {
	var kinds []domain.Kind
	for _, k := range requested {
		if !slices.Contains(kinds, k) {
			kinds = append(kinds, k)
		}
	}
	if len(kinds) < 2 {
		return nil, "", fmt.Errorf("%w: got %d distinct", domain.ErrTooFewAlgorithms, len(kinds))
	}
	var family domain.Family
	for _, k := range kinds {
		e, err := c.reg.Lookup(k)
		if err != nil {
			return nil, "", err
		}
		if !e.Comparable() {
			return nil, "", fmt.Errorf("%w: %s cannot be compared", domain.ErrInvalidParams, k)
		}
		if family == "" {
			family = e.Family
		} else if e.Family != family {
			return nil, "", fmt.Errorf("%w: %s is %s, not %s", domain.ErrFamilyMismatch, k, e.Family, family)
		}
	}
	return kinds, family, nil
}

func (c *Comparer) measure(ctx context.Context, kind domain.Kind, size int, seed uint64) (Row, error) {
	e, err := c.reg.Lookup(kind)
	if err != nil {
		return Row{}, err
	}
	input, params := e.Sample(viz.NewRand(seed+uint64(size)), size)
	if input.Len() == 0 {
		return Row{}, fmt.Errorf("%s: %w", kind, domain.ErrEmptyContainer)
	}
	proc, err := c.reg.Prepare(kind, input, params)
	if err != nil {
		return Row{}, err
	}
	res, err := runner.Execute(ctx, proc)
	if err != nil {
		return Row{}, fmt.Errorf("%s at size %d: %w", kind, size, err)
	}
	c.logger.Debug("measured", "kind", kind, "size", size, "operations", res.Stats.Operations, "elapsed", res.Stats.Elapsed)
	return Row{
		Kind:        kind,
		Size:        size,
		Steps:       res.Steps,
		Operations:  res.Stats.Operations,
		Comparisons: res.Stats.Comparisons,
		Mutations:   res.Stats.Mutations,
		Elapsed:     res.Stats.Elapsed,
		Memory:      res.Stats.MemoryEstimate + uint64(input.Len())*runner.ElementBytes,
		Found:       res.Outcome.Found,
	}, nil
}
