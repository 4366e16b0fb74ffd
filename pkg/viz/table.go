package viz

import (
	"github.com/aretw0/stepwise/pkg/domain"
)

// Table is a rows×cols matrix of integers used for DP tables, matrices and
// the iterative basic algorithms.
type Table struct {
	*Store[int, int64]
	rows, cols int
	rowHeads   []string
	colHeads   []string
}

// NewTable creates a zero-filled table.
func NewTable(rows, cols int) *Table {
	return &Table{Store: NewStore(seq(rows*cols), make([]int64, rows*cols)), rows: rows, cols: cols}
}

// NewMatrix creates a table holding a copy of m. Rows must have equal length.
func NewMatrix(m [][]int64) *Table {
	rows := len(m)
	cols := 0
	if rows > 0 {
		cols = len(m[0])
	}
	t := NewTable(rows, cols)
	for r := range m {
		for c := 0; c < cols; c++ {
			t.Store.values[r*cols+c] = m[r][c]
		}
	}
	return t
}

func (t *Table) Family() domain.Family { return domain.FamilyTable }
func (t *Table) Rows() int             { return t.rows }
func (t *Table) Cols() int             { return t.cols }

func (t *Table) at(r, c int) int {
	if r < 0 || c < 0 || r >= t.rows || c >= t.cols {
		panic("viz: table cell " + CellID(r, c) + " out of range")
	}
	return r*t.cols + c
}

func (t *Table) Cell(r, c int) int64            { return t.Value(t.at(r, c)) }
func (t *Table) SetCell(r, c int, v int64)      { t.SetValue(t.at(r, c), v) }
func (t *Table) CellFlags(r, c int) domain.Flag { return t.Flags(t.at(r, c)) }

// MarkCell merges delta onto a cell.
func (t *Table) MarkCell(r, c int, delta domain.FlagDelta) { t.SetFlags(t.at(r, c), delta) }

// SetHeaders attaches row and column captions shown by renderers.
func (t *Table) SetHeaders(rows, cols []string) {
	t.rowHeads = append([]string(nil), rows...)
	t.colHeads = append([]string(nil), cols...)
}

// Matrix returns a copy of the cell values.
func (t *Table) Matrix() [][]int64 {
	snap := t.Snapshot()
	out := make([][]int64, t.rows)
	for r := range out {
		out[r] = append([]int64(nil), snap.Values[r*t.cols:(r+1)*t.cols]...)
	}
	return out
}

func (t *Table) ClearRunFlags() { t.ClearFlags(domain.RunFlags) }

func (t *Table) Frame() *domain.Frame {
	snap := t.Snapshot()
	f := &domain.Frame{
		Family:   domain.FamilyTable,
		Version:  snap.Version,
		Rows:     t.rows,
		Cols:     t.cols,
		Elements: make([]domain.Element, len(snap.Values)),
	}
	for i, v := range snap.Values {
		r, c := i/t.cols, i%t.cols
		f.Elements[i] = domain.Element{ID: CellID(r, c), Value: float64(v), Flags: snap.Flags[i], X: float64(c), Y: float64(r)}
	}
	if len(t.rowHeads) > 0 || len(t.colHeads) > 0 {
		f.Headers = map[string][]string{"rows": t.rowHeads, "cols": t.colHeads}
	}
	return f
}
