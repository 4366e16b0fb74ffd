package algo

import (
	"fmt"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/viz"
)

// MaxFactorial keeps n! within int64.
const MaxFactorial = 20

// FactorialTable shapes the table for n.
func FactorialTable(n int) *viz.Table { return viz.NewTable(1, n+1) }

// Factorial fills f[i] = f[i-1]·i from f[0] = 1.
func Factorial(tb *viz.Table, n int) (Procedure, error) {
	if n < 0 || n > MaxFactorial {
		return nil, fmt.Errorf("factorial: %w: n must be in [0, %d]", domain.ErrInvalidParams, MaxFactorial)
	}
	if err := shapeError(domain.KindFactorial, tb, 1, n+1); err != nil {
		return nil, err
	}
	return newProc(domain.KindFactorial, func(t *tracker) (domain.Outcome, error) {
		seed(tb, 0, 0, 1)
		for i := 1; i <= n; i++ {
			if err := fill(t, tb, 0, i, tb.Cell(0, i-1)*int64(i), 0); err != nil {
				return domain.Outcome{}, err
			}
		}
		return domain.Outcome{Found: true, Index: n, Value: float64(tb.Cell(0, n))}, nil
	}), nil
}

// ArraySum accumulates the values left to right.
func ArraySum(a *viz.Array) Procedure {
	return newProc(domain.KindArraySum, func(t *tracker) (domain.Outcome, error) {
		sum := 0
		if a.Len() <= 1 {
			if a.Len() == 1 {
				sum = a.At(0)
			}
			return domain.Outcome{Found: true, Index: a.Len() - 1, Value: float64(sum)}, nil
		}
		for i := 0; i < a.Len(); i++ {
			sum += a.At(i)
			a.Mark(i, domain.FlagProcessing)
			err := t.emit(fmt.Sprintf("sum += [%d] -> %d", i, sum), domain.Tally{Ops: 1})
			a.SetFlags(i, domain.FlagDelta{Set: domain.FlagVisited, Clear: domain.FlagProcessing})
			if err != nil {
				return domain.Outcome{}, err
			}
		}
		return domain.Outcome{Found: true, Index: a.Len() - 1, Value: float64(sum)}, nil
	})
}

// GCD runs Euclid's algorithm on a two-slot array, replacing (a, b) with
// (b, a mod b) until b is zero.
func GCD(a *viz.Array) (Procedure, error) {
	if a.Len() != 2 {
		return nil, fmt.Errorf("gcd: %w: need exactly two values, got %d", domain.ErrInvalidParams, a.Len())
	}
	if a.At(0) < 0 || a.At(1) < 0 {
		return nil, fmt.Errorf("gcd: %w: values must be non-negative", domain.ErrInvalidParams)
	}
	return newProc(domain.KindGCD, func(t *tracker) (domain.Outcome, error) {
		for a.At(1) != 0 {
			x, y := a.At(0), a.At(1)
			a.SetValue(0, y)
			a.SetValue(1, x%y)
			if err := compareAt(t, a, 0, 1, true); err != nil {
				return domain.Outcome{}, err
			}
		}
		a.Mark(0, domain.FlagFound)
		return domain.Outcome{Found: true, Index: 0, Value: float64(a.At(0))}, nil
	}), nil
}
