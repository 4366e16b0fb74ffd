package viz

import (
	"sync"
	"testing"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrid_Editing(t *testing.T) {
	g := NewGrid(3, 4)
	require.NoError(t, g.SetStart(0, 0))
	require.NoError(t, g.SetTarget(2, 3))
	require.NoError(t, g.ToggleWall(1, 1))

	assert.ErrorIs(t, g.ToggleWall(0, 0), domain.ErrInvalidParams)
	assert.ErrorIs(t, g.ToggleWall(5, 5), domain.ErrElementNotFound)

	start, ok := g.Start()
	require.True(t, ok)
	assert.Equal(t, "0:0", start)

	require.NoError(t, g.SetStart(1, 1))
	start, _ = g.Start()
	assert.Equal(t, "1:1", start)
	assert.False(t, g.NodeFlags("1:1").Has(domain.FlagWall), "start replaces a wall")
	assert.False(t, g.NodeFlags("0:0").Has(domain.FlagStart))

	g.Freeze()
	assert.ErrorIs(t, g.ToggleWall(2, 2), domain.ErrStructureLocked)
	assert.ErrorIs(t, g.SetTarget(0, 0), domain.ErrStructureLocked)
	assert.ErrorIs(t, g.SetWeight(0, 0, 3), domain.ErrStructureLocked)
}

func TestGrid_NeighborsSkipWalls(t *testing.T) {
	g := NewGrid(3, 3)
	require.NoError(t, g.ToggleWall(0, 1))
	require.NoError(t, g.SetWeight(1, 0, 4))

	arcs := g.Neighbors("1:1")
	var ids []string
	for _, a := range arcs {
		ids = append(ids, a.To)
	}
	assert.Equal(t, []string{"1:2", "2:1", "1:0"}, ids)
	assert.Equal(t, 4.0, arcs[2].Weight)
	assert.Equal(t, Point{X: 2, Y: 1}, g.Position("1:2"))
	assert.Len(t, g.NodeIDs(), 8)
}

func TestGraph_Editing(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.AddNode("a", Point{}))
	require.NoError(t, g.AddNode("b", Point{X: 1}))
	assert.ErrorIs(t, g.AddNode("a", Point{}), domain.ErrInvalidParams)
	assert.ErrorIs(t, g.AddEdge("a", "z", 1), domain.ErrElementNotFound)
	assert.ErrorIs(t, g.AddEdge("a", "b", -1), domain.ErrInvalidParams)
	assert.ErrorIs(t, g.AddEdge("a", "a", 1), domain.ErrInvalidParams)

	require.NoError(t, g.AddEdge("a", "b", 3))
	require.NoError(t, g.AddEdge("b", "a", 2))
	assert.Equal(t, []domain.Edge{{From: "a", To: "b", Weight: 2}}, g.Edges())
	assert.Equal(t, []Arc{{To: "a", Weight: 2}}, g.Neighbors("b"))

	g.Freeze()
	assert.ErrorIs(t, g.AddNode("c", Point{}), domain.ErrStructureLocked)
	assert.ErrorIs(t, g.AddEdge("a", "b", 1), domain.ErrStructureLocked)
	g.Thaw()

	require.NoError(t, g.Clear())
	assert.Equal(t, 0, g.Len())
	assert.Empty(t, g.Edges())
}

func TestTree_BuildAndRotate(t *testing.T) {
	tr := BuildBST([]int{30, 20, 10})
	root := tr.Root()
	require.Equal(t, 0, root)
	assert.Equal(t, []int{10, 20, 30}, tr.InorderKeys())

	for _, slot := range []int{2, 1, 0} {
		tr.UpdateHeight(slot)
	}
	assert.Equal(t, 2, tr.Balance(0))

	newRoot := tr.RotateRight(0)
	assert.Equal(t, 1, newRoot)
	assert.Equal(t, 1, tr.Root())
	assert.Equal(t, 2, tr.Left(1))
	assert.Equal(t, 0, tr.Right(1))
	assert.Equal(t, 2, tr.Height(1))
	assert.Equal(t, []int{10, 20, 30}, tr.InorderKeys())

	assert.Panics(t, func() { tr.Attach(2, 0, true) }, "a slot has exactly one owner")
}

func TestTree_FramePending(t *testing.T) {
	tr := NewTree([]int{5, 3})
	tr.SetRoot(0)
	f := tr.Frame()
	require.Len(t, f.Elements, 2)
	assert.Equal(t, "", f.Elements[0].Label)
	assert.Equal(t, "pending", f.Elements[1].Label)

	tr.Attach(0, 1, true)
	f = tr.Frame()
	assert.Equal(t, []domain.Edge{{From: "n0", To: "n1", Label: "L"}}, f.Edges)
	assert.Equal(t, 1.0, f.Elements[1].Y)
}

func TestBoard(t *testing.T) {
	c, err := ParseCells("XXX.O.O..")
	require.NoError(t, err)
	assert.Equal(t, X, c.Winner())

	_, err = ParseCells("XX")
	assert.ErrorIs(t, err, domain.ErrInvalidParams)

	b := NewBoard(Cells{})
	require.NoError(t, b.Play(4, X))
	assert.ErrorIs(t, b.Play(4, O), domain.ErrInvalidParams)
	assert.Equal(t, "....X....", b.Cells().String())
	assert.Equal(t, "X", b.Frame().Elements[4].Label)
}

func TestSpec_RoundTrip(t *testing.T) {
	g := NewGrid(2, 3)
	require.NoError(t, g.SetStart(0, 0))
	require.NoError(t, g.SetTarget(1, 2))
	require.NoError(t, g.ToggleWall(0, 1))
	require.NoError(t, g.SetWeight(1, 1, 5))

	spec, err := Describe(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"0:1"}, spec.Walls)

	c, err := spec.Build()
	require.NoError(t, err)
	rebuilt := c.(*Grid)
	assert.Equal(t, g.Frame().Elements, rebuilt.Frame().Elements)
}

func TestSpec_BuildErrors(t *testing.T) {
	_, err := Spec{Family: "nope"}.Build()
	assert.ErrorIs(t, err, domain.ErrInvalidParams)

	_, err = Spec{Family: domain.FamilyTable, Matrix: [][]int64{{1, 2}, {3}}}.Build()
	assert.ErrorIs(t, err, domain.ErrInvalidParams)

	_, err = Spec{Family: domain.FamilyGraph, Nodes: []NodeSpec{{ID: "a"}}, Edges: []EdgeSpec{{From: "a", To: "b"}}}.Build()
	assert.ErrorIs(t, err, domain.ErrElementNotFound)
}

func TestGenerators_Deterministic(t *testing.T) {
	a := RandomValues(NewRand(7), 10)
	b := RandomValues(NewRand(7), 10)
	assert.Equal(t, a, b)
	for _, v := range a {
		assert.True(t, v >= 1 && v <= 100)
	}

	g := RandomGraph(NewRand(1), 6, 4)
	assert.Equal(t, 6, g.Len())
	start, _ := g.Start()
	assert.Equal(t, "node-1", start)

	p := NewPopulation(NewRand(3), 4, 5)
	assert.Equal(t, 4, p.Len())
	assert.InDelta(t, Fitness(p.Genes(0)), p.Frame().Elements[0].Value, 1e-9)
}

func TestArray_Edits(t *testing.T) {
	a := NewArray([]int{1, 2, 3})
	a.Mark(2, domain.FlagSorted)

	require.NoError(t, a.Insert(0, 9))
	assert.Equal(t, []int{9, 1, 2, 3}, a.Values())
	assert.Zero(t, a.Flags(3), "edits clear flags")
	require.NoError(t, a.Insert(4, 7))
	assert.Equal(t, []int{9, 1, 2, 3, 7}, a.Values())

	require.NoError(t, a.Delete(1))
	assert.Equal(t, []int{9, 2, 3, 7}, a.Values())
	require.NoError(t, a.Update(3, 4))
	assert.Equal(t, []int{9, 2, 3, 4}, a.Values())
	assert.Equal(t, 4, a.Frame().Cols)

	assert.ErrorIs(t, a.Insert(6, 1), domain.ErrElementNotFound)
	assert.ErrorIs(t, a.Delete(4), domain.ErrElementNotFound)
	assert.ErrorIs(t, a.Update(-1, 1), domain.ErrElementNotFound)

	a.Freeze()
	assert.ErrorIs(t, a.Insert(0, 1), domain.ErrStructureLocked)
	assert.ErrorIs(t, a.Delete(0), domain.ErrStructureLocked)
	assert.ErrorIs(t, a.Update(0, 1), domain.ErrStructureLocked)
	assert.Equal(t, []int{9, 2, 3, 4}, a.Values())
}

func TestGraph_EditsDoNotLandAfterFreeze(t *testing.T) {
	for round := 0; round < 200; round++ {
		g := NewGraph()
		require.NoError(t, g.AddNode("a", Point{}))
		require.NoError(t, g.AddNode("b", Point{X: 1}))

		var (
			wg     sync.WaitGroup
			frozen []domain.Edge
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			for w := 1; w <= 50; w++ {
				_ = g.AddEdge("a", "b", float64(w))
			}
		}()
		go func() {
			defer wg.Done()
			g.Freeze()
			frozen = g.Edges()
		}()
		wg.Wait()
		require.Equal(t, frozen, g.Edges(), "round %d", round)
	}
}

func TestGrid_EditsDoNotLandAfterFreeze(t *testing.T) {
	for round := 0; round < 200; round++ {
		g := NewGrid(2, 2)
		var (
			wg     sync.WaitGroup
			frozen *domain.Frame
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			for w := 1; w <= 50; w++ {
				_ = g.SetWeight(0, 0, w)
				_ = g.ToggleWall(1, 1)
				_ = g.SetStart(0, 1)
			}
		}()
		go func() {
			defer wg.Done()
			g.Freeze()
			frozen = g.Frame()
		}()
		wg.Wait()
		require.Equal(t, frozen, g.Frame(), "round %d", round)
	}
}
