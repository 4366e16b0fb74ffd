package algo

import (
	"fmt"
	"math"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/viz"
)

// probe evaluates one candidate index as a step. It marks the index found on
// a hit and visited otherwise.
func probe(t *tracker, a *viz.Array, i, target int) (bool, error) {
	a.Mark(i, domain.FlagComparing)
	hit := a.At(i) == target
	if hit {
		a.Mark(i, domain.FlagFound)
	}
	err := t.compare(fmt.Sprintf("probe [%d]=%d", i, a.At(i)), false)
	a.Unmark(i, domain.FlagComparing)
	if !hit {
		a.Mark(i, domain.FlagVisited)
	}
	return hit, err
}

func found(a *viz.Array, i int) domain.Outcome {
	return domain.Outcome{Found: true, Index: i, Value: float64(a.At(i))}
}

// trivialSearch answers a search over at most one element without steps.
func trivialSearch(a *viz.Array, target int) domain.Outcome {
	if a.Len() == 1 && a.At(0) == target {
		a.Mark(0, domain.FlagFound)
		return found(a, 0)
	}
	return domain.NotFound()
}

func requireSorted(kind domain.Kind, a *viz.Array) error {
	if !a.IsSorted() {
		return fmt.Errorf("%s: %w: input must be sorted", kind, domain.ErrMissingPrerequisite)
	}
	return nil
}

// LinearSearch probes every index in order.
func LinearSearch(a *viz.Array, target int) Procedure {
	return newProc(domain.KindLinearSearch, func(t *tracker) (domain.Outcome, error) {
		if a.Len() <= 1 {
			return trivialSearch(a, target), nil
		}
		for i := 0; i < a.Len(); i++ {
			hit, err := probe(t, a, i, target)
			if err != nil {
				return domain.Outcome{}, err
			}
			if hit {
				return found(a, i), nil
			}
		}
		return domain.NotFound(), nil
	})
}

// BinarySearch halves the probe range around mid = lo + (hi-lo)/2.
func BinarySearch(a *viz.Array, target int) (Procedure, error) {
	if err := requireSorted(domain.KindBinarySearch, a); err != nil {
		return nil, err
	}
	return newProc(domain.KindBinarySearch, func(t *tracker) (domain.Outcome, error) {
		if a.Len() <= 1 {
			return trivialSearch(a, target), nil
		}
		lo, hi := 0, a.Len()-1
		for lo <= hi {
			mid := lo + (hi-lo)/2
			hit, err := probe(t, a, mid, target)
			if err != nil {
				return domain.Outcome{}, err
			}
			switch {
			case hit:
				return found(a, mid), nil
			case a.At(mid) < target:
				lo = mid + 1
			default:
				hi = mid - 1
			}
		}
		return domain.NotFound(), nil
	}), nil
}

// JumpSearch probes block ends floor(sqrt(n)) apart, then scans the block.
func JumpSearch(a *viz.Array, target int) (Procedure, error) {
	if err := requireSorted(domain.KindJumpSearch, a); err != nil {
		return nil, err
	}
	return newProc(domain.KindJumpSearch, func(t *tracker) (domain.Outcome, error) {
		n := a.Len()
		if n <= 1 {
			return trivialSearch(a, target), nil
		}
		jump := int(math.Sqrt(float64(n)))
		prev, step := 0, jump
		for {
			end := min(step, n) - 1
			hit, err := probe(t, a, end, target)
			if err != nil {
				return domain.Outcome{}, err
			}
			if hit {
				return found(a, end), nil
			}
			if a.At(end) > target {
				break
			}
			prev = step
			step += jump
			if prev >= n {
				return domain.NotFound(), nil
			}
		}
		for i := prev; i < min(step, n)-1; i++ {
			hit, err := probe(t, a, i, target)
			if err != nil {
				return domain.Outcome{}, err
			}
			if hit {
				return found(a, i), nil
			}
			if a.At(i) > target {
				break
			}
		}
		return domain.NotFound(), nil
	}), nil
}

// InterpolationSearch estimates the probe position from the value range.
func InterpolationSearch(a *viz.Array, target int) (Procedure, error) {
	if err := requireSorted(domain.KindInterpolationSearch, a); err != nil {
		return nil, err
	}
	return newProc(domain.KindInterpolationSearch, func(t *tracker) (domain.Outcome, error) {
		if a.Len() <= 1 {
			return trivialSearch(a, target), nil
		}
		lo, hi := 0, a.Len()-1
		for lo <= hi && target >= a.At(lo) && target <= a.At(hi) {
			pos := interpolate(lo, hi, a.At(lo), a.At(hi), target)
			hit, err := probe(t, a, pos, target)
			if err != nil {
				return domain.Outcome{}, err
			}
			switch {
			case hit:
				return found(a, pos), nil
			case a.At(pos) < target:
				lo = pos + 1
			default:
				hi = pos - 1
			}
		}
		return domain.NotFound(), nil
	}), nil
}

// interpolate estimates target's index in [lo, hi]. The arithmetic runs in
// float64 so values near the int limits cannot overflow.
func interpolate(lo, hi, vlo, vhi, target int) int {
	if vhi == vlo {
		return lo
	}
	off := (float64(target) - float64(vlo)) * float64(hi-lo) / (float64(vhi) - float64(vlo))
	pos := lo + int(off)
	return max(lo, min(pos, hi))
}
