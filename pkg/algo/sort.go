package algo

import (
	"fmt"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/viz"
)

func markAllSorted(a *viz.Array) {
	for i := 0; i < a.Len(); i++ {
		a.Mark(i, domain.FlagSorted)
	}
}

// compareAt marks i and j as compared for the duration of one step.
func compareAt(t *tracker, a *viz.Array, i, j int, swapped bool) error {
	a.Mark(i, domain.FlagComparing)
	a.Mark(j, domain.FlagComparing)
	err := t.compare(fmt.Sprintf("compare [%d] and [%d]", i, j), swapped)
	a.Unmark(i, domain.FlagComparing)
	a.Unmark(j, domain.FlagComparing)
	return err
}

// BubbleSort compares adjacent pairs without early exit, so it always
// performs n(n-1)/2 comparisons. After pass i the last i+1 slots are final.
func BubbleSort(a *viz.Array) Procedure {
	return newProc(domain.KindBubbleSort, func(t *tracker) (domain.Outcome, error) {
		n := a.Len()
		if n <= 1 {
			markAllSorted(a)
			return domain.Outcome{}, nil
		}
		for i := 0; i < n-1; i++ {
			for j := 0; j < n-i-1; j++ {
				swapped := a.At(j) > a.At(j+1)
				if swapped {
					a.Swap(j, j+1)
				}
				if err := compareAt(t, a, j, j+1, swapped); err != nil {
					return domain.Outcome{}, err
				}
			}
			a.Mark(n-i-1, domain.FlagSorted)
		}
		a.Mark(0, domain.FlagSorted)
		return domain.Outcome{}, nil
	})
}

// InsertionSort sinks each element into the sorted prefix by adjacent swaps.
func InsertionSort(a *viz.Array) Procedure {
	return newProc(domain.KindInsertionSort, func(t *tracker) (domain.Outcome, error) {
		n := a.Len()
		if n <= 1 {
			markAllSorted(a)
			return domain.Outcome{}, nil
		}
		for i := 1; i < n; i++ {
			a.Mark(i, domain.FlagProcessing)
			for j := i; j > 0; j-- {
				swapped := a.At(j-1) > a.At(j)
				if swapped {
					a.Swap(j-1, j)
				}
				if err := compareAt(t, a, j-1, j, swapped); err != nil {
					return domain.Outcome{}, err
				}
				if !swapped {
					break
				}
			}
			a.Unmark(i, domain.FlagProcessing)
		}
		markAllSorted(a)
		return domain.Outcome{}, nil
	})
}

type span struct{ lo, hi int }

// QuickSort partitions with Lomuto's scheme around the last element. The
// pivot's final slot is marked sorted after each partition, as is every
// single-element range.
func QuickSort(a *viz.Array) Procedure {
	return newProc(domain.KindQuickSort, func(t *tracker) (domain.Outcome, error) {
		n := a.Len()
		if n <= 1 {
			markAllSorted(a)
			return domain.Outcome{}, nil
		}
		stack := []span{{0, n - 1}}
		for len(stack) > 0 {
			t.aux = uint64(len(stack)) * 2 * wordBytes
			s := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if s.lo > s.hi {
				continue
			}
			if s.lo == s.hi {
				a.Mark(s.lo, domain.FlagSorted)
				continue
			}

			pivot := a.At(s.hi)
			a.Mark(s.hi, domain.FlagProcessing)
			i := s.lo - 1
			for j := s.lo; j < s.hi; j++ {
				swapped := false
				if a.At(j) < pivot {
					i++
					if i != j {
						a.Swap(i, j)
						swapped = true
					}
				}
				if err := compareAt(t, a, j, s.hi, swapped); err != nil {
					return domain.Outcome{}, err
				}
			}

			p := i + 1
			a.Unmark(s.hi, domain.FlagProcessing)
			a.Swap(p, s.hi)
			a.Mark(p, domain.FlagSorted)
			if err := t.write(fmt.Sprintf("place pivot %d at [%d]", pivot, p)); err != nil {
				return domain.Outcome{}, err
			}
			stack = append(stack, span{p + 1, s.hi}, span{s.lo, p - 1})
		}
		return domain.Outcome{}, nil
	})
}

// MergeSort merges runs of doubling width bottom-up. Each merge comparison
// and each leftover copy is one step.
func MergeSort(a *viz.Array) Procedure {
	return newProc(domain.KindMergeSort, func(t *tracker) (domain.Outcome, error) {
		n := a.Len()
		if n <= 1 {
			markAllSorted(a)
			return domain.Outcome{}, nil
		}
		t.aux = uint64(n) * wordBytes
		for width := 1; width < n; width *= 2 {
			for lo := 0; lo < n-width; lo += 2 * width {
				mid, hi := lo+width, min(lo+2*width, n)
				if err := merge(t, a, lo, mid, hi); err != nil {
					return domain.Outcome{}, err
				}
			}
		}
		markAllSorted(a)
		return domain.Outcome{}, nil
	})
}

func merge(t *tracker, a *viz.Array, lo, mid, hi int) error {
	vals := a.Values()
	left := append([]int(nil), vals[lo:mid]...)
	right := append([]int(nil), vals[mid:hi]...)

	i, j, k := 0, 0, lo
	for i < len(left) && j < len(right) {
		v := right[j]
		if left[i] <= right[j] {
			v = left[i]
			i++
		} else {
			j++
		}
		changed := a.At(k) != v
		a.SetValue(k, v)
		if err := compareAt(t, a, k, min(mid+j, hi-1), changed); err != nil {
			return err
		}
		k++
	}
	rest := append(left[i:], right[j:]...)
	for _, v := range rest {
		a.SetValue(k, v)
		a.Mark(k, domain.FlagProcessing)
		err := t.write(fmt.Sprintf("copy %d to [%d]", v, k))
		a.Unmark(k, domain.FlagProcessing)
		if err != nil {
			return err
		}
		k++
	}
	return nil
}
