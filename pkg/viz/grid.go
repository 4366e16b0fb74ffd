package viz

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Grid is a rows×cols board of weighted cells used for pathfinding.
// Cell values are the cost of entering the cell.
type Grid struct {
	*Store[int, int]
	rows, cols int
}

// NewGrid creates a grid of unit-cost cells.
func NewGrid(rows, cols int) *Grid {
	weights := make([]int, rows*cols)
	for i := range weights {
		weights[i] = 1
	}
	return &Grid{Store: NewStore(seq(rows*cols), weights), rows: rows, cols: cols}
}

func (g *Grid) Family() domain.Family { return domain.FamilyGrid }
func (g *Grid) Rows() int             { return g.rows }
func (g *Grid) Cols() int             { return g.cols }

// CellID formats the element id of a cell.
func CellID(r, c int) string { return strconv.Itoa(r) + ":" + strconv.Itoa(c) }

// ParseCellID splits an "r:c" id.
func ParseCellID(id string) (r, c int, ok bool) {
	rs, cs, found := strings.Cut(id, ":")
	if !found {
		return 0, 0, false
	}
	r, err1 := strconv.Atoi(rs)
	c, err2 := strconv.Atoi(cs)
	return r, c, err1 == nil && err2 == nil
}

func (g *Grid) index(r, c int) (int, error) {
	if r < 0 || c < 0 || r >= g.rows || c >= g.cols {
		return 0, fmt.Errorf("%w: cell %d:%d outside %dx%d grid", domain.ErrElementNotFound, r, c, g.rows, g.cols)
	}
	return r*g.cols + c, nil
}

func (g *Grid) mustIndex(id string) int {
	r, c, ok := ParseCellID(id)
	if !ok {
		panic("viz: malformed cell id " + id)
	}
	i, err := g.index(r, c)
	if err != nil {
		panic(err)
	}
	return i
}

// ToggleWall flips the wall flag of a cell. Start and target cells cannot be walls.
func (g *Grid) ToggleWall(r, c int) error {
	i, err := g.index(r, c)
	if err != nil {
		return err
	}
	return g.edit(func() error {
		if g.flags[i]&(domain.FlagStart|domain.FlagTarget) != 0 {
			return fmt.Errorf("%w: cell %d:%d is an endpoint", domain.ErrInvalidParams, r, c)
		}
		g.flags[i] ^= domain.FlagWall
		return nil
	})
}

// SetWeight sets the cost of entering a cell. Costs must be positive.
func (g *Grid) SetWeight(r, c, w int) error {
	i, err := g.index(r, c)
	if err != nil {
		return err
	}
	if w < 1 {
		return fmt.Errorf("%w: weight %d must be positive", domain.ErrInvalidParams, w)
	}
	return g.edit(func() error {
		g.values[i] = w
		return nil
	})
}

// SetStart moves the start marker to a cell.
func (g *Grid) SetStart(r, c int) error { return g.moveMarker(domain.FlagStart, r, c) }

// SetTarget moves the target marker to a cell.
func (g *Grid) SetTarget(r, c int) error { return g.moveMarker(domain.FlagTarget, r, c) }

func (g *Grid) moveMarker(marker domain.Flag, r, c int) error {
	i, err := g.index(r, c)
	if err != nil {
		return err
	}
	return g.edit(func() error {
		return g.placeMarker(marker, i, domain.Unmark(domain.FlagWall))
	})
}

func (g *Grid) ClearRunFlags() { g.ClearFlags(domain.RunFlags) }

// NodeIDs lists every open cell in row-major order.
func (g *Grid) NodeIDs() []string {
	snap := g.Snapshot()
	ids := make([]string, 0, len(snap.Keys))
	for i, f := range snap.Flags {
		if !f.Has(domain.FlagWall) {
			ids = append(ids, CellID(i/g.cols, i%g.cols))
		}
	}
	return ids
}

var gridMoves = [4][2]int{{-1, 0}, {0, 1}, {1, 0}, {0, -1}}

// Neighbors returns open cells in up, right, down, left order.
func (g *Grid) Neighbors(id string) []Arc {
	i := g.mustIndex(id)
	r, c := i/g.cols, i%g.cols
	arcs := make([]Arc, 0, 4)
	for _, m := range gridMoves {
		nr, nc := r+m[0], c+m[1]
		j, err := g.index(nr, nc)
		if err != nil || g.Store.Flags(j).Has(domain.FlagWall) {
			continue
		}
		arcs = append(arcs, Arc{To: CellID(nr, nc), Weight: float64(g.Value(j))})
	}
	return arcs
}

// Position maps a cell to (column, row).
func (g *Grid) Position(id string) Point {
	i := g.mustIndex(id)
	return Point{X: float64(i % g.cols), Y: float64(i / g.cols)}
}

func (g *Grid) Start() (string, bool)  { return g.marker(domain.FlagStart) }
func (g *Grid) Target() (string, bool) { return g.marker(domain.FlagTarget) }

func (g *Grid) marker(f domain.Flag) (string, bool) {
	i, ok := g.Find(f)
	if !ok {
		return "", false
	}
	return CellID(i/g.cols, i%g.cols), true
}

func (g *Grid) NodeFlags(id string) domain.Flag { return g.Store.Flags(g.mustIndex(id)) }

func (g *Grid) Mark(id string, delta domain.FlagDelta) { g.SetFlags(g.mustIndex(id), delta) }

func (g *Grid) Frame() *domain.Frame {
	snap := g.Snapshot()
	f := &domain.Frame{
		Family:   domain.FamilyGrid,
		Version:  snap.Version,
		Rows:     g.rows,
		Cols:     g.cols,
		Elements: make([]domain.Element, len(snap.Values)),
	}
	for i, w := range snap.Values {
		r, c := i/g.cols, i%g.cols
		f.Elements[i] = domain.Element{
			ID:    CellID(r, c),
			Value: float64(w),
			Flags: snap.Flags[i],
			X:     float64(c),
			Y:     float64(r),
		}
	}
	return f
}
