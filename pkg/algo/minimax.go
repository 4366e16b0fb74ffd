package algo

import (
	"fmt"
	"math"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/viz"
)

// Computer is the maximizing player; Human minimizes.
const (
	Computer = viz.O
	Human    = viz.X
)

// score evaluates a finished board from the computer's point of view.
func score(c viz.Cells, depth int) (int, bool) {
	switch c.Winner() {
	case Computer:
		return 10 - depth, true
	case Human:
		return depth - 10, true
	}
	if c.Full() {
		return 0, true
	}
	return 0, false
}

// node is one board configuration on the explicit search stack.
type node struct {
	cells       viz.Cells
	depth       int
	maximizing  bool
	alpha, beta int
	best        int
	next        int
	entered     bool
}

// Minimax chooses the computer's move on a 3×3 board and plays it. Each
// explored configuration is one step. Candidates are scanned row-major and
// only a strictly better score replaces the current choice, so ties go to
// the first cell found. Alpha-beta pruning, when enabled, narrows the search
// without changing that choice.
func Minimax(b *viz.Board, alphaBeta bool) (Procedure, error) {
	cells := b.Cells()
	if _, over := score(cells, 0); over {
		return nil, fmt.Errorf("minimax: %w: the game is already over", domain.ErrMissingPrerequisite)
	}
	return newProc(domain.KindMinimax, func(t *tracker) (domain.Outcome, error) {
		bestScore, bestMove := math.MinInt, -1
		for cell := 0; cell < 9; cell++ {
			if cells[cell] != viz.Empty {
				continue
			}
			child := cells
			child[cell] = Computer

			alpha := math.MinInt
			if alphaBeta && bestMove >= 0 {
				alpha = bestScore
			}
			b.SetFlags(cell, domain.Mark(domain.FlagComparing))
			s, err := search(t, child, alpha, math.MaxInt, alphaBeta)
			b.SetFlags(cell, domain.Unmark(domain.FlagComparing))
			if err != nil {
				return domain.Outcome{}, err
			}
			if s > bestScore {
				bestScore, bestMove = s, cell
			}
		}

		b.SetValue(bestMove, Computer)
		b.SetFlags(bestMove, domain.Mark(domain.FlagFound))
		return domain.Outcome{
			Found:  true,
			Index:  bestMove,
			Value:  float64(bestScore),
			Detail: fmt.Sprintf("row %d col %d", bestMove/3, bestMove%3),
		}, nil
	}), nil
}

// search scores root (the human to move, depth 0) with an explicit stack.
func search(t *tracker, root viz.Cells, alpha, beta int, prune bool) (int, error) {
	stack := []*node{{cells: root, maximizing: false, alpha: alpha, beta: beta, best: math.MaxInt}}
	var ret int
	returning := false

	for len(stack) > 0 {
		t.aux = uint64(len(stack)) * 16 * wordBytes
		f := stack[len(stack)-1]

		switch {
		case returning:
			returning = false
			if f.maximizing {
				f.best = max(f.best, ret)
				f.alpha = max(f.alpha, f.best)
			} else {
				f.best = min(f.best, ret)
				f.beta = min(f.beta, f.best)
			}
			if prune && f.alpha >= f.beta {
				stack = stack[:len(stack)-1]
				ret, returning = f.best, true
				continue
			}
		case !f.entered:
			f.entered = true
			label := fmt.Sprintf("explore %s at depth %d", f.cells, f.depth)
			if err := t.emit(label, domain.Tally{Ops: 1, Comparisons: 1}); err != nil {
				return 0, err
			}
			if s, over := score(f.cells, f.depth); over {
				stack = stack[:len(stack)-1]
				ret, returning = s, true
				continue
			}
		}

		for f.next < 9 && f.cells[f.next] != viz.Empty {
			f.next++
		}
		if f.next == 9 {
			stack = stack[:len(stack)-1]
			ret, returning = f.best, true
			continue
		}

		child := f.cells
		if f.maximizing {
			child[f.next] = Computer
		} else {
			child[f.next] = Human
		}
		f.next++

		next := &node{cells: child, depth: f.depth + 1, maximizing: !f.maximizing, alpha: f.alpha, beta: f.beta}
		if next.maximizing {
			next.best = math.MinInt
		} else {
			next.best = math.MaxInt
		}
		stack = append(stack, next)
	}
	return ret, nil
}
