package viz

import (
	"fmt"
	"sync"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Store is an ordered, keyed collection of values with display flags.
// Reads and writes are guarded so that a snapshot never observes a
// half-applied mutation.
type Store[K comparable, V any] struct {
	mu      sync.RWMutex
	keys    []K
	index   map[K]int
	values  []V
	flags   []domain.Flag
	frozen  bool
	version uint64
}

// Snapshot is an immutable copy of a Store.
type Snapshot[K comparable, V any] struct {
	Keys    []K
	Values  []V
	Flags   []domain.Flag
	Version uint64
}

// NewStore creates a store. keys and values must have equal length and keys
// must be unique.
func NewStore[K comparable, V any](keys []K, values []V) *Store[K, V] {
	s := &Store[K, V]{}
	s.load(keys, values)
	return s
}

func (s *Store[K, V]) load(keys []K, values []V) {
	if len(keys) != len(values) {
		panic(fmt.Sprintf("viz: %d keys for %d values", len(keys), len(values)))
	}
	s.keys = append([]K(nil), keys...)
	s.values = append([]V(nil), values...)
	s.flags = make([]domain.Flag, len(keys))
	s.index = make(map[K]int, len(keys))
	for i, k := range keys {
		if _, dup := s.index[k]; dup {
			panic(fmt.Sprintf("viz: duplicate key %v", k))
		}
		s.index[k] = i
	}
}

func (s *Store[K, V]) pos(k K) int {
	i, ok := s.index[k]
	if !ok {
		panic(fmt.Sprintf("viz: unknown element %v", k))
	}
	return i
}

// Len returns the number of elements.
func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

// Has reports whether k is an element of the store.
func (s *Store[K, V]) Has(k K) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[k]
	return ok
}

// Keys returns the element keys in order.
func (s *Store[K, V]) Keys() []K {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]K(nil), s.keys...)
}

// Value returns the payload of k. Unknown keys panic.
func (s *Store[K, V]) Value(k K) V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[s.pos(k)]
}

// Flags returns the flags of k. Unknown keys panic.
func (s *Store[K, V]) Flags(k K) domain.Flag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[s.pos(k)]
}

// SetFlags merges delta onto the flags of k.
func (s *Store[K, V]) SetFlags(k K, delta domain.FlagDelta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.pos(k)
	s.flags[i] = delta.Apply(s.flags[i])
	s.version++
}

// SetValue overwrites the payload of k.
func (s *Store[K, V]) SetValue(k K, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[s.pos(k)] = v
	s.version++
}

// Swap exchanges the payloads of a and b. Flags describe positions
// (comparing, sorted) and stay where they are.
func (s *Store[K, V]) Swap(a, b K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, j := s.pos(a), s.pos(b)
	s.values[i], s.values[j] = s.values[j], s.values[i]
	s.version++
}

// Snapshot returns a copy of the store contents.
func (s *Store[K, V]) Snapshot() Snapshot[K, V] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot[K, V]{
		Keys:    append([]K(nil), s.keys...),
		Values:  append([]V(nil), s.values...),
		Flags:   append([]domain.Flag(nil), s.flags...),
		Version: s.version,
	}
}

// Reset replaces the contents and clears every flag.
func (s *Store[K, V]) Reset(keys []K, values []V) error {
	return s.edit(func() error {
		s.load(keys, values)
		return nil
	})
}

// Append adds an element. It is a structural edit.
func (s *Store[K, V]) Append(k K, v V, flags domain.Flag) error {
	return s.edit(func() error { return s.add(k, v, flags) })
}

func (s *Store[K, V]) add(k K, v V, flags domain.Flag) error {
	if _, dup := s.index[k]; dup {
		return fmt.Errorf("%w: duplicate element %v", domain.ErrInvalidParams, k)
	}
	s.index[k] = len(s.keys)
	s.keys = append(s.keys, k)
	s.values = append(s.values, v)
	s.flags = append(s.flags, flags)
	return nil
}

// edit runs fn under the write lock. It is rejected while a run has frozen
// the structure.
func (s *Store[K, V]) edit(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return domain.ErrStructureLocked
	}
	if err := fn(); err != nil {
		return err
	}
	s.version++
	return nil
}

// ClearFlags removes the mask from every element, including sorted.
func (s *Store[K, V]) ClearFlags(mask domain.Flag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.flags {
		s.flags[i] &^= mask
	}
	s.version++
}

// EditFlags applies a structural flag change (wall, start, target).
// It is rejected while the store is frozen.
func (s *Store[K, V]) EditFlags(k K, delta domain.FlagDelta) error {
	return s.edit(func() error {
		i, ok := s.index[k]
		if !ok {
			return fmt.Errorf("%w: %v", domain.ErrElementNotFound, k)
		}
		s.flags[i] = (s.flags[i] &^ delta.Clear) | delta.Set
		return nil
	})
}

// placeMarker clears marker wherever it is set and applies delta to k.
// Callers hold the write lock.
func (s *Store[K, V]) placeMarker(marker domain.Flag, k K, delta domain.FlagDelta) error {
	i, ok := s.index[k]
	if !ok {
		return fmt.Errorf("%w: %v", domain.ErrElementNotFound, k)
	}
	for j := range s.flags {
		s.flags[j] &^= marker
	}
	s.flags[i] = (s.flags[i] &^ delta.Clear) | delta.Set | marker
	return nil
}

// Find returns the first key whose flags contain mask.
func (s *Store[K, V]) Find(mask domain.Flag) (K, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, f := range s.flags {
		if f.Has(mask) {
			return s.keys[i], true
		}
	}
	var zero K
	return zero, false
}

// Freeze locks the structure for the duration of a run.
func (s *Store[K, V]) Freeze() {
	s.mu.Lock()
	s.frozen = true
	s.mu.Unlock()
}

// Thaw releases the structure lock.
func (s *Store[K, V]) Thaw() {
	s.mu.Lock()
	s.frozen = false
	s.mu.Unlock()
}

// Frozen reports whether a run holds the structure.
func (s *Store[K, V]) Frozen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frozen
}

// Version is incremented by every mutation.
func (s *Store[K, V]) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
