package viz

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Array is the linear store used by sorts and searches.
type Array struct {
	*Store[int, int]
}

// NewArray creates an array holding a copy of values.
func NewArray(values []int) *Array {
	return &Array{Store: NewStore(seq(len(values)), values)}
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func (a *Array) Family() domain.Family { return domain.FamilyArray }

// At returns the value at index i.
func (a *Array) At(i int) int { return a.Value(i) }

// Values returns a copy of the current values.
func (a *Array) Values() []int { return a.Snapshot().Values }

// Mark sets flags on index i.
func (a *Array) Mark(i int, flags ...domain.Flag) { a.SetFlags(i, domain.Mark(flags...)) }

// Unmark clears flags on index i.
func (a *Array) Unmark(i int, flags ...domain.Flag) { a.SetFlags(i, domain.Unmark(flags...)) }

// Load replaces the contents. It is rejected while a run is active.
func (a *Array) Load(values []int) error {
	return a.Reset(seq(len(values)), values)
}

// Insert places v at index i, shifting later elements right. i may equal
// Len to append. It is a structural edit.
func (a *Array) Insert(i, v int) error {
	return a.edit(func() error {
		if i < 0 || i > len(a.values) {
			return fmt.Errorf("%w: index %d outside 0..%d", domain.ErrElementNotFound, i, len(a.values))
		}
		a.splice(i, 0, v)
		return nil
	})
}

// Delete removes index i, shifting later elements left. It is a structural edit.
func (a *Array) Delete(i int) error {
	return a.edit(func() error {
		if err := a.inRange(i); err != nil {
			return err
		}
		a.splice(i, 1)
		return nil
	})
}

// Update overwrites index i outside a run.
func (a *Array) Update(i, v int) error {
	return a.edit(func() error {
		if err := a.inRange(i); err != nil {
			return err
		}
		a.values[i] = v
		return nil
	})
}

func (a *Array) inRange(i int) error {
	if i < 0 || i >= len(a.values) {
		return fmt.Errorf("%w: index %d outside array of %d", domain.ErrElementNotFound, i, len(a.values))
	}
	return nil
}

// splice rewrites the values and re-keys every index. Flags are cleared.
// Callers hold the write lock.
func (a *Array) splice(i, del int, ins ...int) {
	a.load(seq(len(a.values)-del+len(ins)), slices.Concat(a.values[:i:i], ins, a.values[i+del:]))
}

// IsSorted reports whether values are in non-decreasing order.
func (a *Array) IsSorted() bool {
	v := a.Values()
	for i := 1; i < len(v); i++ {
		if v[i-1] > v[i] {
			return false
		}
	}
	return true
}

func (a *Array) ClearRunFlags() { a.ClearFlags(domain.RunFlags) }

func (a *Array) Frame() *domain.Frame {
	snap := a.Snapshot()
	f := &domain.Frame{
		Family:   domain.FamilyArray,
		Version:  snap.Version,
		Cols:     len(snap.Values),
		Elements: make([]domain.Element, len(snap.Values)),
	}
	for i, v := range snap.Values {
		f.Elements[i] = domain.Element{ID: strconv.Itoa(i), Value: float64(v), Flags: snap.Flags[i]}
	}
	return f
}
