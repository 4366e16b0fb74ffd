package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
)

// Store implements ports.PresetStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]ports.Preset
	mu   sync.RWMutex
	now  func() time.Time
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]ports.Preset),
		now:  time.Now,
	}
}

// Save stores a copy of p so later changes by the caller are not visible.
func (s *Store) Save(ctx context.Context, p ports.Preset) error {
	name, err := ports.SanitizeName(p.Name)
	if err != nil {
		return err
	}
	cp := p.Clone()
	cp.Name = name
	cp.UpdatedAt = s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = cp
	return nil
}

// Load returns a copy of the stored preset.
func (s *Store) Load(ctx context.Context, name string) (ports.Preset, error) {
	key, err := ports.SanitizeName(name)
	if err != nil {
		return ports.Preset{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.data[key]
	if !ok {
		return ports.Preset{}, domain.ErrPresetNotFound
	}
	return p.Clone(), nil
}

// Delete removes the preset.
func (s *Store) Delete(ctx context.Context, name string) error {
	key, err := ports.SanitizeName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns the stored names in order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}
