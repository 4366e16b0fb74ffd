package viz

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Mark is the content of a tic-tac-toe cell.
type Mark int8

const (
	Empty Mark = iota
	X
	O
)

func (m Mark) String() string {
	switch m {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return "."
	}
}

// Opponent returns the other player.
func (m Mark) Opponent() Mark {
	if m == X {
		return O
	}
	return X
}

// Cells is a 3×3 board in row-major order.
type Cells [9]Mark

var winLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Winner returns the player holding a full line, or Empty.
func (c Cells) Winner() Mark {
	for _, l := range winLines {
		if c[l[0]] != Empty && c[l[0]] == c[l[1]] && c[l[1]] == c[l[2]] {
			return c[l[0]]
		}
	}
	return Empty
}

// Full reports whether no empty cell remains.
func (c Cells) Full() bool {
	for _, m := range c {
		if m == Empty {
			return false
		}
	}
	return true
}

func (c Cells) String() string {
	var b strings.Builder
	for _, m := range c {
		b.WriteString(m.String())
	}
	return b.String()
}

// ParseCells reads a nine character board of X, O and '.' (or '-', ' ').
func ParseCells(s string) (Cells, error) {
	var c Cells
	if len(s) != 9 {
		return c, fmt.Errorf("%w: board needs 9 cells, got %d", domain.ErrInvalidParams, len(s))
	}
	for i, ch := range strings.ToUpper(s) {
		switch ch {
		case 'X':
			c[i] = X
		case 'O':
			c[i] = O
		case '.', '-', ' ', '_':
			c[i] = Empty
		default:
			return c, fmt.Errorf("%w: board cell %q", domain.ErrInvalidParams, ch)
		}
	}
	return c, nil
}

// Board is the tic-tac-toe store searched by minimax.
type Board struct {
	*Store[int, Mark]
}

// NewBoard creates a board with the given cells.
func NewBoard(c Cells) *Board {
	return &Board{Store: NewStore(seq(9), c[:])}
}

func (b *Board) Family() domain.Family { return domain.FamilyBoard }

// Cells returns the current marks.
func (b *Board) Cells() Cells {
	var c Cells
	copy(c[:], b.Snapshot().Values)
	return c
}

// Play places a mark. It is a user move and is rejected during a run.
func (b *Board) Play(cell int, m Mark) error {
	if cell < 0 || cell > 8 {
		return fmt.Errorf("%w: cell %d", domain.ErrElementNotFound, cell)
	}
	return b.edit(func() error {
		var c Cells
		copy(c[:], b.values)
		if c[cell] != Empty {
			return fmt.Errorf("%w: cell %d is taken", domain.ErrInvalidParams, cell)
		}
		if c.Winner() != Empty {
			return fmt.Errorf("%w: game is over", domain.ErrInvalidParams)
		}
		b.values[cell] = m
		return nil
	})
}

func (b *Board) ClearRunFlags() { b.ClearFlags(domain.RunFlags) }

func (b *Board) Frame() *domain.Frame {
	snap := b.Snapshot()
	f := &domain.Frame{
		Family:   domain.FamilyBoard,
		Version:  snap.Version,
		Rows:     3,
		Cols:     3,
		Elements: make([]domain.Element, 9),
	}
	for i, m := range snap.Values {
		label := ""
		if m != Empty {
			label = m.String()
		}
		f.Elements[i] = domain.Element{
			ID:    strconv.Itoa(i),
			Value: float64(m),
			Label: label,
			Flags: snap.Flags[i],
			X:     float64(i % 3),
			Y:     float64(i / 3),
		}
	}
	return f
}
