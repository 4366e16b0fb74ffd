package algo

import (
	"fmt"
	"strconv"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/viz"
)

func touch(t *tracker, tr *viz.Tree, slot int, flag domain.Flag, label string, tally domain.Tally) error {
	tr.SetFlags(slot, domain.Mark(flag))
	err := t.emit(label, tally)
	tr.SetFlags(slot, domain.Unmark(flag))
	return err
}

// descend walks from the root comparing key at each node, one step per
// comparison, and returns the slot whose empty side receives key.
func descend(t *tracker, tr *viz.Tree, key int) (parent int, left bool, err error) {
	cur := tr.Root()
	for {
		left = key < tr.Key(cur)
		next := tr.Right(cur)
		if left {
			next = tr.Left(cur)
		}
		label := fmt.Sprintf("compare %d with %d", key, tr.Key(cur))
		if err := touch(t, tr, cur, domain.FlagComparing, label, domain.Tally{Ops: 1, Comparisons: 1}); err != nil {
			return 0, false, err
		}
		if next == viz.None {
			return cur, left, nil
		}
		cur = next
	}
}

func insertSlot(t *tracker, tr *viz.Tree, slot int) error {
	key := tr.Key(slot)
	if tr.Root() == viz.None {
		tr.SetRoot(slot)
	} else {
		parent, left, err := descend(t, tr, key)
		if err != nil {
			return err
		}
		tr.Attach(parent, slot, left)
	}
	return touch(t, tr, slot, domain.FlagProcessing, fmt.Sprintf("insert %d", key), domain.Tally{Ops: 1, Mutations: 1})
}

// BSTInsert rebuilds the tree by inserting every key in slot order.
// Equal keys go right.
func BSTInsert(tr *viz.Tree) Procedure {
	return newProc(domain.KindBSTInsert, func(t *tracker) (domain.Outcome, error) {
		tr.Unlink()
		if tr.Len() == 1 {
			tr.SetRoot(0)
		}
		if tr.Len() <= 1 {
			return domain.Outcome{}, nil
		}
		t.aux = uint64(tr.Len()) * 4 * wordBytes
		for slot := 0; slot < tr.Len(); slot++ {
			if err := insertSlot(t, tr, slot); err != nil {
				return domain.Outcome{}, err
			}
		}
		return domain.Outcome{Index: tr.Root(), Value: float64(tr.Height(tr.Root()))}, nil
	})
}

// AVLInsert inserts like BSTInsert, then retraces to the root updating
// heights and rotating any node whose balance leaves [-1, 1].
func AVLInsert(tr *viz.Tree) Procedure {
	return newProc(domain.KindAVLInsert, func(t *tracker) (domain.Outcome, error) {
		tr.Unlink()
		if tr.Len() == 1 {
			tr.SetRoot(0)
		}
		if tr.Len() <= 1 {
			return domain.Outcome{}, nil
		}
		t.aux = uint64(tr.Len()) * 4 * wordBytes
		rotations := 0
		for slot := 0; slot < tr.Len(); slot++ {
			if err := insertSlot(t, tr, slot); err != nil {
				return domain.Outcome{}, err
			}
			key := tr.Key(slot)
			for p := tr.Parent(slot); p != viz.None; p = tr.Parent(p) {
				tr.UpdateHeight(p)
				n, err := rebalance(t, tr, p, key)
				if err != nil {
					return domain.Outcome{}, err
				}
				rotations += n
				if n > 0 {
					// p moved down; continue above the new subtree root.
					p = tr.Parent(p)
				}
			}
		}
		return domain.Outcome{
			Index:  tr.Root(),
			Value:  float64(tr.Height(tr.Root())),
			Detail: strconv.Itoa(rotations) + " rotations",
		}, nil
	})
}

// rebalance fixes the node at p after inserting key below it and returns
// how many rotations it performed.
func rebalance(t *tracker, tr *viz.Tree, p, key int) (int, error) {
	bal := tr.Balance(p)
	rotate := func(label string, fn func(int) int, at int) error {
		root := fn(at)
		return touch(t, tr, root, domain.FlagProcessing, label, domain.Tally{Ops: 1, Mutations: 1})
	}
	switch {
	case bal > 1 && key < tr.Key(tr.Left(p)):
		return 1, rotate(fmt.Sprintf("rotate right at %d", tr.Key(p)), tr.RotateRight, p)
	case bal < -1 && key >= tr.Key(tr.Right(p)):
		return 1, rotate(fmt.Sprintf("rotate left at %d", tr.Key(p)), tr.RotateLeft, p)
	case bal > 1:
		if err := rotate(fmt.Sprintf("rotate left at %d", tr.Key(tr.Left(p))), tr.RotateLeft, tr.Left(p)); err != nil {
			return 1, err
		}
		return 2, rotate(fmt.Sprintf("rotate right at %d", tr.Key(p)), tr.RotateRight, p)
	case bal < -1:
		if err := rotate(fmt.Sprintf("rotate right at %d", tr.Key(tr.Right(p))), tr.RotateRight, tr.Right(p)); err != nil {
			return 1, err
		}
		return 2, rotate(fmt.Sprintf("rotate left at %d", tr.Key(p)), tr.RotateLeft, p)
	}
	return 0, nil
}

func requireRoot(kind domain.Kind, tr *viz.Tree) error {
	if tr.Len() > 1 && tr.Root() == viz.None {
		return fmt.Errorf("%s: %w: tree has no root", kind, domain.ErrMissingPrerequisite)
	}
	return nil
}

// BSTSearch walks from the root toward key.
func BSTSearch(tr *viz.Tree, key int) (Procedure, error) {
	if err := requireRoot(domain.KindBSTSearch, tr); err != nil {
		return nil, err
	}
	return newProc(domain.KindBSTSearch, func(t *tracker) (domain.Outcome, error) {
		if tr.Len() <= 1 {
			if tr.Len() == 1 && tr.Key(0) == key {
				tr.SetFlags(0, domain.Mark(domain.FlagFound))
				return domain.Outcome{Found: true, Index: 0, Value: float64(key)}, nil
			}
			return domain.NotFound(), nil
		}
		var path []string
		for cur := tr.Root(); cur != viz.None; {
			k := tr.Key(cur)
			path = append(path, viz.NodeID(cur))
			hit := k == key
			if hit {
				tr.SetFlags(cur, domain.Mark(domain.FlagFound))
			}
			if err := touch(t, tr, cur, domain.FlagComparing, fmt.Sprintf("compare %d with %d", key, k), domain.Tally{Ops: 1, Comparisons: 1}); err != nil {
				return domain.Outcome{}, err
			}
			if hit {
				return domain.Outcome{Found: true, Index: cur, Value: float64(k), Path: path}, nil
			}
			tr.SetFlags(cur, domain.Mark(domain.FlagVisited))
			if key < k {
				cur = tr.Left(cur)
			} else {
				cur = tr.Right(cur)
			}
		}
		out := domain.NotFound()
		out.Path = path
		return out, nil
	}), nil
}

// Order selects a depth-first traversal order.
type Order int

const (
	Inorder Order = iota
	Preorder
	Postorder
)

// Traverse visits every attached node in the given order, one step per visit.
func Traverse(tr *viz.Tree, order Order) (Procedure, error) {
	kind := map[Order]domain.Kind{Inorder: domain.KindInorder, Preorder: domain.KindPreorder, Postorder: domain.KindPostorder}[order]
	if err := requireRoot(kind, tr); err != nil {
		return nil, err
	}
	return newProc(kind, func(t *tracker) (domain.Outcome, error) {
		if tr.Len() <= 1 {
			var seq []string
			if tr.Len() == 1 {
				tr.SetFlags(0, domain.Mark(domain.FlagVisited))
				seq = []string{strconv.Itoa(tr.Key(0))}
			}
			return domain.Outcome{Index: -1, Sequence: seq}, nil
		}
		var seq []string
		visit := func(slot int) error {
			seq = append(seq, strconv.Itoa(tr.Key(slot)))
			tr.SetFlags(slot, domain.Mark(domain.FlagVisited))
			return touch(t, tr, slot, domain.FlagProcessing, fmt.Sprintf("visit %d", tr.Key(slot)), domain.Tally{Ops: 1})
		}

		var stack []int
		switch order {
		case Preorder:
			stack = append(stack, tr.Root())
			for len(stack) > 0 {
				t.aux = uint64(len(stack)) * wordBytes
				cur := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if err := visit(cur); err != nil {
					return domain.Outcome{}, err
				}
				if r := tr.Right(cur); r != viz.None {
					stack = append(stack, r)
				}
				if l := tr.Left(cur); l != viz.None {
					stack = append(stack, l)
				}
			}
		case Inorder:
			cur := tr.Root()
			for cur != viz.None || len(stack) > 0 {
				for cur != viz.None {
					stack = append(stack, cur)
					cur = tr.Left(cur)
				}
				t.aux = uint64(len(stack)) * wordBytes
				cur = stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if err := visit(cur); err != nil {
					return domain.Outcome{}, err
				}
				cur = tr.Right(cur)
			}
		case Postorder:
			last := viz.None
			cur := tr.Root()
			for cur != viz.None || len(stack) > 0 {
				for cur != viz.None {
					stack = append(stack, cur)
					cur = tr.Left(cur)
				}
				t.aux = uint64(len(stack)) * wordBytes
				top := stack[len(stack)-1]
				if r := tr.Right(top); r != viz.None && r != last {
					cur = r
					continue
				}
				stack = stack[:len(stack)-1]
				if err := visit(top); err != nil {
					return domain.Outcome{}, err
				}
				last = top
			}
		}
		return domain.Outcome{Index: -1, Sequence: seq}, nil
	}), nil
}
