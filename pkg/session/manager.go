package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/algo"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/aretw0/stepwise/pkg/registry"
	"github.com/aretw0/stepwise/pkg/runner"
	"github.com/aretw0/stepwise/pkg/viz"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// DefaultSize is the element count of generated inputs.
const DefaultSize = 12

// DefaultLockTTL bounds how long a distributed workspace lock is held.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager creates and serializes access to workspaces. Unused locks are
// garbage collected by reference counting.
type Manager struct {
	mu    sync.Mutex
	locks map[string]*lockEntry

	wsMu       sync.RWMutex
	workspaces map[string]*Workspace

	reg        *registry.Registry
	presets    ports.PresetStore
	locker     ports.DistributedLocker
	lockTTL    time.Duration
	logger     *slog.Logger
	runnerOpts []runner.Option
	validate   *validator.Validate
	seed       uint64
	seq        atomic.Uint64
	newID      func() string
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.lockTTL = d
		}
	}
}

// WithLogger configures a logger for the Manager and its runners.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithPresets enables LoadPreset and SavePreset.
func WithPresets(store ports.PresetStore) Option {
	return func(m *Manager) {
		m.presets = store
	}
}

// WithRegistry sets the algorithm catalog shared by every workspace.
func WithRegistry(reg *registry.Registry) Option {
	return func(m *Manager) {
		m.reg = reg
	}
}

// WithRunnerOptions are applied to every workspace runner.
func WithRunnerOptions(opts ...runner.Option) Option {
	return func(m *Manager) {
		m.runnerOpts = append(m.runnerOpts, opts...)
	}
}

// WithSeed makes generated inputs reproducible: workspace n draws from
// seed+n.
func WithSeed(seed uint64) Option {
	return func(m *Manager) {
		m.seed = seed
	}
}

// NewManager creates an empty Manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		locks:      make(map[string]*lockEntry),
		workspaces: make(map[string]*Workspace),
		lockTTL:    DefaultLockTTL,
		logger:     logging.NewNop(),
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		seed:       uint64(time.Now().UnixNano()),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.reg == nil {
		m.reg = registry.Default()
	}
	return m
}

// Registry returns the shared algorithm catalog.
func (m *Manager) Registry() *registry.Registry { return m.reg }

// Presets returns the preset store, or nil.
func (m *Manager) Presets() ports.PresetStore { return m.presets }

// acquire gets or creates a lock entry and increments its reference count.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Create starts a new idle workspace.
func (m *Manager) Create(ctx context.Context) (*Workspace, error) {
	n := m.seq.Add(1)
	opts := append([]runner.Option{runner.WithLogger(m.logger), runner.WithRegistry(m.reg)}, m.runnerOpts...)
	ws := &Workspace{
		ID:      m.newID(),
		Created: time.Now().UTC(),
		runner:  runner.New(opts...),
		rng:     viz.NewRand(m.seed + n),
	}
	m.wsMu.Lock()
	m.workspaces[ws.ID] = ws
	m.wsMu.Unlock()
	m.logger.Info("workspace created", "workspace_id", ws.ID)
	return ws, nil
}

// Get returns the workspace with id.
func (m *Manager) Get(id string) (*Workspace, error) {
	m.wsMu.RLock()
	defer m.wsMu.RUnlock()
	ws, ok := m.workspaces[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrWorkspaceNotFound, id)
	}
	return ws, nil
}

// List returns every workspace, oldest first.
func (m *Manager) List() []Info {
	m.wsMu.RLock()
	out := make([]Info, 0, len(m.workspaces))
	for _, ws := range m.workspaces {
		out = append(out, ws.Info())
	}
	m.wsMu.RUnlock()
	slices.SortFunc(out, func(a, b Info) int {
		if c := a.Created.Compare(b.Created); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Delete cancels any active run and forgets the workspace.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context, ws *Workspace) error {
		if err := ws.runner.Cancel(); err != nil && !errors.Is(err, domain.ErrInvalidTransition) {
			return err
		}
		m.wsMu.Lock()
		delete(m.workspaces, id)
		m.wsMu.Unlock()
		m.logger.Info("workspace deleted", "workspace_id", id)
		return nil
	})
}

// Close cancels every active run.
func (m *Manager) Close() {
	m.wsMu.RLock()
	all := make([]*Workspace, 0, len(m.workspaces))
	for _, ws := range m.workspaces {
		all = append(all, ws)
	}
	m.wsMu.RUnlock()
	for _, ws := range all {
		_ = ws.runner.Cancel()
	}
}

// WithLock runs fn while holding the lock for workspace id.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context, *Workspace) error) error {
	ws, err := m.Get(id)
	if err != nil {
		return err
	}

	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, "workspace:"+id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"workspace_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx, ws)
}

// SetContainer replaces the workspace container with the one described by
// spec. Rejected with ErrStructureLocked while a run is active.
func (m *Manager) SetContainer(ctx context.Context, id string, spec viz.Spec) (viz.Container, error) {
	if err := m.validate.Struct(spec); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidParams, err)
	}
	var c viz.Container
	err := m.WithLock(ctx, id, func(ctx context.Context, ws *Workspace) error {
		if err := unlocked(ws); err != nil {
			return err
		}
		built, err := spec.Build()
		if err != nil {
			return err
		}
		c = built
		ws.set(c, "", nil)
		return nil
	})
	return c, err
}

// Generate replaces the container with a seeded input suited to kind.
func (m *Manager) Generate(ctx context.Context, id string, kind domain.Kind, params map[string]any, size int) (viz.Container, map[string]any, error) {
	if size <= 0 {
		size = DefaultSize
	}
	var (
		c      viz.Container
		merged map[string]any
	)
	err := m.WithLock(ctx, id, func(ctx context.Context, ws *Workspace) error {
		if err := unlocked(ws); err != nil {
			return err
		}
		var err error
		c, merged, err = m.reg.Input(kind, params, ws.rng, size)
		if err != nil {
			return err
		}
		ws.set(c, kind, merged)
		return nil
	})
	return c, merged, err
}

// Start runs kind on the workspace container. Without a container, or for
// kinds whose input is shaped by their params (tables, factorial), an input
// is generated first.
func (m *Manager) Start(ctx context.Context, id string, kind domain.Kind, params map[string]any) (domain.RunState, error) {
	var st domain.RunState
	err := m.WithLock(ctx, id, func(ctx context.Context, ws *Workspace) error {
		e, err := m.reg.Lookup(kind)
		if err != nil {
			return err
		}
		if err := unlocked(ws); err != nil {
			return err
		}
		c := ws.Container()
		if c == nil || e.Input != nil {
			gen, merged, err := m.reg.Input(kind, params, ws.rng, DefaultSize)
			if err != nil {
				return err
			}
			c, params = gen, merged
		}
		st, err = ws.runner.Start(ctx, kind, c, params)
		if err != nil {
			return err
		}
		ws.set(c, kind, params)
		return nil
	})
	return st, err
}

// LoadPreset replaces the container with a stored preset and remembers its
// kind and params.
func (m *Manager) LoadPreset(ctx context.Context, id, name string) (ports.Preset, error) {
	if m.presets == nil {
		return ports.Preset{}, fmt.Errorf("%w: no preset store configured", domain.ErrMissingPrerequisite)
	}
	p, err := m.presets.Load(ctx, name)
	if err != nil {
		return ports.Preset{}, err
	}
	err = m.WithLock(ctx, id, func(ctx context.Context, ws *Workspace) error {
		if err := unlocked(ws); err != nil {
			return err
		}
		c, err := p.Spec.Build()
		if err != nil {
			return err
		}
		ws.set(c, p.Kind, p.Params)
		return nil
	})
	return p, err
}

// SavePreset stores the workspace container under name.
func (m *Manager) SavePreset(ctx context.Context, id, name string) (ports.Preset, error) {
	if m.presets == nil {
		return ports.Preset{}, fmt.Errorf("%w: no preset store configured", domain.ErrMissingPrerequisite)
	}
	var p ports.Preset
	err := m.WithLock(ctx, id, func(ctx context.Context, ws *Workspace) error {
		c := ws.Container()
		if c == nil {
			return fmt.Errorf("%w: workspace has no container", domain.ErrMissingPrerequisite)
		}
		spec, err := viz.Describe(c)
		if err != nil {
			return err
		}
		kind, params := ws.Selection()
		p = ports.Preset{Name: name, Kind: kind, Params: params, Spec: spec}
		return m.presets.Save(ctx, p)
	})
	if err != nil {
		return ports.Preset{}, err
	}
	return m.presets.Load(ctx, name)
}

// Move is the result of a human tic-tac-toe move.
type Move struct {
	State  domain.RunState `json:"state"`
	Board  string          `json:"board"`
	Winner string          `json:"winner,omitempty"`
	Over   bool            `json:"over"`
}

// Play places the human mark on cell of the workspace board, creating an
// empty board first if needed, and starts minimax for the computer's reply
// unless the move ended the game.
func (m *Manager) Play(ctx context.Context, id string, cell int) (Move, error) {
	var mv Move
	err := m.WithLock(ctx, id, func(ctx context.Context, ws *Workspace) error {
		if err := unlocked(ws); err != nil {
			return err
		}
		board, ok := ws.Container().(*viz.Board)
		if !ok {
			board = viz.NewBoard(viz.Cells{})
		}
		if err := board.Play(cell, algo.Human); err != nil {
			return err
		}
		cells := board.Cells()
		mv.Board = cells.String()
		if w := cells.Winner(); w != viz.Empty || cells.Full() {
			ws.set(board, domain.KindMinimax, nil)
			mv.State, mv.Over = ws.runner.State(), true
			if w != viz.Empty {
				mv.Winner = w.String()
			}
			return nil
		}

		kind, params := ws.Selection()
		if kind != domain.KindMinimax {
			params = nil
		}
		st, err := ws.runner.Start(ctx, domain.KindMinimax, board, params)
		if err != nil {
			return err
		}
		ws.set(board, domain.KindMinimax, params)
		mv.State = st
		return nil
	})
	return mv, err
}

func unlocked(ws *Workspace) error {
	if st := ws.runner.State(); st.Status.Active() {
		return fmt.Errorf("%w: run %s is %s", domain.ErrStructureLocked, st.RunID, st.Status)
	}
	return nil
}
