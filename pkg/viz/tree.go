package viz

import (
	"fmt"
	"sync"

	"github.com/aretw0/stepwise/pkg/domain"
)

// None marks a missing child, parent or root.
const None = -1

// Tree is a binary tree over a fixed set of slots. Each slot holds one key
// and is owned by at most one parent. Slots that are not yet linked are
// pending and are attached by insert algorithms.
type Tree struct {
	*Store[int, int]

	mu     sync.RWMutex
	root   int
	left   []int
	right  []int
	parent []int
	height []int
}

// NewTree creates a tree whose slots hold keys, all pending.
func NewTree(keys []int) *Tree {
	t := &Tree{Store: NewStore(seq(len(keys)), keys)}
	t.unlink(len(keys))
	return t
}

// BuildBST creates a tree with every key inserted in order, without steps.
// Duplicate keys go to the right.
func BuildBST(keys []int) *Tree {
	t := NewTree(keys)
	for slot := range keys {
		t.insertQuiet(slot)
	}
	return t
}

func (t *Tree) insertQuiet(slot int) {
	if t.root == None {
		t.SetRoot(slot)
		return
	}
	key := t.Key(slot)
	cur := t.root
	for {
		if key < t.Key(cur) {
			if t.Left(cur) == None {
				t.Attach(cur, slot, true)
				return
			}
			cur = t.Left(cur)
		} else {
			if t.Right(cur) == None {
				t.Attach(cur, slot, false)
				return
			}
			cur = t.Right(cur)
		}
	}
}

func (t *Tree) unlink(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.root = None
	t.left = filled(n, None)
	t.right = filled(n, None)
	t.parent = filled(n, None)
	t.height = filled(n, 1)
}

func filled(n, v int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func (t *Tree) Family() domain.Family { return domain.FamilyTree }

// Unlink detaches every slot. Insert algorithms call it before rebuilding.
func (t *Tree) Unlink() { t.unlink(t.Len()) }

// Load replaces the keys; every slot becomes pending.
func (t *Tree) Load(keys []int) error {
	return t.Store.edit(func() error {
		t.load(seq(len(keys)), keys)
		t.unlink(len(keys))
		return nil
	})
}

func (t *Tree) Key(slot int) int { return t.Value(slot) }

func (t *Tree) Root() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root
}

func (t *Tree) Left(slot int) int   { return t.link(t.left, slot) }
func (t *Tree) Right(slot int) int  { return t.link(t.right, slot) }
func (t *Tree) Parent(slot int) int { return t.link(t.parent, slot) }
func (t *Tree) Height(slot int) int {
	if slot == None {
		return 0
	}
	return t.link(t.height, slot)
}

func (t *Tree) link(s []int, slot int) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return s[slot]
}

// Attached reports whether slot is reachable from the root.
func (t *Tree) Attached(slot int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slot == t.root || t.parent[slot] != None
}

// SetRoot makes a detached slot the root.
func (t *Tree) SetRoot(slot int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if slot != None && t.parent[slot] != None {
		panic(fmt.Sprintf("viz: slot %d already has a parent", slot))
	}
	t.root = slot
}

// Attach links child under parent. The child must be detached and the side
// must be empty.
func (t *Tree) Attach(parent, child int, left bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.parent[child] != None || child == t.root {
		panic(fmt.Sprintf("viz: slot %d already owned", child))
	}
	side := t.right
	if left {
		side = t.left
	}
	if side[parent] != None {
		panic(fmt.Sprintf("viz: slot %d side already occupied", parent))
	}
	side[parent] = child
	t.parent[child] = parent
	t.retrace(parent)
}

// retrace recomputes heights from n up to the root. Callers hold mu.
func (t *Tree) retrace(n int) {
	h := func(s int) int {
		if s == None {
			return 0
		}
		return t.height[s]
	}
	for ; n != None; n = t.parent[n] {
		t.height[n] = 1 + max(h(t.left[n]), h(t.right[n]))
	}
}

// Detach unlinks slot from its parent and returns the former parent.
func (t *Tree) Detach(slot int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.parent[slot]
	switch {
	case p == None:
		if t.root == slot {
			t.root = None
		}
	case t.left[p] == slot:
		t.left[p] = None
	default:
		t.right[p] = None
	}
	t.parent[slot] = None
	t.retrace(p)
	return p
}

// UpdateHeight recomputes the height of slot from its children.
func (t *Tree) UpdateHeight(slot int) {
	h := 1 + max(t.Height(t.Left(slot)), t.Height(t.Right(slot)))
	t.mu.Lock()
	t.height[slot] = h
	t.mu.Unlock()
}

// Balance returns height(left) - height(right).
func (t *Tree) Balance(slot int) int {
	return t.Height(t.Left(slot)) - t.Height(t.Right(slot))
}

// RotateRight rotates the subtree rooted at y and returns its new root.
func (t *Tree) RotateRight(y int) int {
	x := t.Left(y)
	t.rotate(y, x, t.Right(x), true)
	return x
}

// RotateLeft rotates the subtree rooted at x and returns its new root.
func (t *Tree) RotateLeft(x int) int {
	y := t.Right(x)
	t.rotate(x, y, t.Left(y), false)
	return y
}

// rotate lifts child above top; inner is the grandchild that changes sides.
func (t *Tree) rotate(top, child, inner int, right bool) {
	p := t.Parent(top)
	wasLeft := p != None && t.Left(p) == top

	t.Detach(child)
	if inner != None {
		t.Detach(inner)
	}
	t.Detach(top)

	if inner != None {
		t.Attach(top, inner, right)
	}
	t.Attach(child, top, !right)

	if p == None {
		t.SetRoot(child)
	} else {
		t.Attach(p, child, wasLeft)
	}
	t.UpdateHeight(top)
	t.UpdateHeight(child)
}

func (t *Tree) ClearRunFlags() { t.ClearFlags(domain.RunFlags) }

// InorderKeys returns the attached keys in sorted traversal order.
func (t *Tree) InorderKeys() []int {
	var out []int
	var stack []int
	cur := t.Root()
	for cur != None || len(stack) > 0 {
		for cur != None {
			stack = append(stack, cur)
			cur = t.Left(cur)
		}
		cur = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, t.Key(cur))
		cur = t.Right(cur)
	}
	return out
}

// NodeID formats the element id of a slot.
func NodeID(slot int) string { return fmt.Sprintf("n%d", slot) }

// Frame lays attached nodes out by in-order position (x) and depth (y).
func (t *Tree) Frame() *domain.Frame {
	snap := t.Snapshot()
	t.mu.RLock()
	defer t.mu.RUnlock()

	f := &domain.Frame{
		Family:   domain.FamilyTree,
		Version:  snap.Version,
		Elements: make([]domain.Element, len(snap.Keys)),
	}
	pos := make(map[int]Point, len(snap.Keys))
	type item struct{ slot, depth int }
	var stack []item
	x := 0
	cur := item{t.root, 0}
	for cur.slot != None || len(stack) > 0 {
		for cur.slot != None {
			stack = append(stack, cur)
			cur = item{t.left[cur.slot], cur.depth + 1}
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		pos[top.slot] = Point{X: float64(x), Y: float64(top.depth)}
		x++
		cur = item{t.right[top.slot], top.depth + 1}
	}

	for i, key := range snap.Values {
		el := domain.Element{ID: NodeID(i), Value: float64(key), Flags: snap.Flags[i]}
		if p, ok := pos[i]; ok {
			el.X, el.Y = p.X, p.Y
		} else {
			el.Label = "pending"
		}
		f.Elements[i] = el
		if l := t.left[i]; l != None {
			f.Edges = append(f.Edges, domain.Edge{From: NodeID(i), To: NodeID(l), Label: "L"})
		}
		if r := t.right[i]; r != None {
			f.Edges = append(f.Edges, domain.Edge{From: NodeID(i), To: NodeID(r), Label: "R"})
		}
	}
	return f
}
