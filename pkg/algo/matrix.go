package algo

import (
	"fmt"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/viz"
)

func requireSquare(kind domain.Kind, tb *viz.Table) error {
	if tb.Rows() != tb.Cols() {
		return fmt.Errorf("%s: %w: matrix must be square, got %dx%d", kind, domain.ErrInvalidParams, tb.Rows(), tb.Cols())
	}
	return nil
}

// rewrite writes every cell from fn(original), one step per cell.
func rewrite(kind domain.Kind, tb *viz.Table, fn func(m [][]int64, r, c int) (int64, int)) (Procedure, error) {
	if err := requireSquare(kind, tb); err != nil {
		return nil, err
	}
	return newProc(kind, func(t *tracker) (domain.Outcome, error) {
		if tb.Len() <= 1 {
			return domain.Outcome{}, nil
		}
		orig := tb.Matrix()
		n := len(orig)
		t.aux = uint64(n*n) * wordBytes
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				v, work := fn(orig, r, c)
				tb.MarkCell(r, c, domain.Mark(domain.FlagProcessing))
				tb.SetCell(r, c, v)
				err := t.emit(fmt.Sprintf("m[%d][%d] = %d", r, c, v), domain.Tally{Ops: work, Mutations: 1})
				tb.MarkCell(r, c, domain.FlagDelta{Set: domain.FlagCalculated, Clear: domain.FlagProcessing})
				if err != nil {
					return domain.Outcome{}, err
				}
			}
		}
		return domain.Outcome{}, nil
	}), nil
}

// RotateMatrix rotates a square matrix 90° clockwise (transpose, then
// reverse each row).
func RotateMatrix(tb *viz.Table) (Procedure, error) {
	return rewrite(domain.KindMatrixRotate, tb, func(m [][]int64, r, c int) (int64, int) {
		return m[len(m)-1-c][r], 1
	})
}

// MultiplyMatrix replaces a square matrix with its square.
func MultiplyMatrix(tb *viz.Table) (Procedure, error) {
	return rewrite(domain.KindMatrixMultiply, tb, func(m [][]int64, r, c int) (int64, int) {
		var sum int64
		for k := range m {
			sum += m[r][k] * m[k][c]
		}
		return sum, len(m)
	})
}

// TransposeMatrix swaps each pair across the diagonal in place.
func TransposeMatrix(tb *viz.Table) (Procedure, error) {
	if err := requireSquare(domain.KindMatrixTranspose, tb); err != nil {
		return nil, err
	}
	return newProc(domain.KindMatrixTranspose, func(t *tracker) (domain.Outcome, error) {
		n := tb.Rows()
		for r := 0; r < n; r++ {
			for c := r + 1; c < n; c++ {
				a, b := tb.Cell(r, c), tb.Cell(c, r)
				tb.SetCell(r, c, b)
				tb.SetCell(c, r, a)
				tb.MarkCell(r, c, domain.Mark(domain.FlagComparing))
				tb.MarkCell(c, r, domain.Mark(domain.FlagComparing))
				err := t.emit(fmt.Sprintf("swap m[%d][%d] and m[%d][%d]", r, c, c, r), domain.Tally{Ops: 1, Mutations: 2})
				tb.MarkCell(r, c, domain.FlagDelta{Set: domain.FlagCalculated, Clear: domain.FlagComparing})
				tb.MarkCell(c, r, domain.FlagDelta{Set: domain.FlagCalculated, Clear: domain.FlagComparing})
				if err != nil {
					return domain.Outcome{}, err
				}
			}
		}
		return domain.Outcome{}, nil
	}), nil
}
