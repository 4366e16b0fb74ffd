package viz

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

const (
	DefaultPopulation = 20
	DefaultGenes      = 10
)

// NewRand returns a deterministic generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// RandomValues draws n values in [1, 100].
func RandomValues(rng *rand.Rand, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = rng.IntN(100) + 1
	}
	return out
}

// SortedValues draws n values and sorts them.
func SortedValues(rng *rand.Rand, n int) []int {
	v := RandomValues(rng, n)
	slices.Sort(v)
	return v
}

// RandomGrid creates a grid with start at the top-left corner, target at the
// bottom-right corner and roughly density of the remaining cells walled.
func RandomGrid(rng *rand.Rand, rows, cols int, density float64) *Grid {
	g := NewGrid(rows, cols)
	_ = g.SetStart(0, 0)
	_ = g.SetTarget(rows-1, cols-1)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if (r == 0 && c == 0) || (r == rows-1 && c == cols-1) {
				continue
			}
			if rng.Float64() < density {
				_ = g.ToggleWall(r, c)
			}
		}
	}
	return g
}

// RandomGraph places n nodes on an 800×600 canvas and connects them with a
// spanning chain plus extra random edges weighted 1 to 10. The first node is
// the start and the last the target.
func RandomGraph(rng *rand.Rand, n, extra int) *Graph {
	g := NewGraph()
	for i := 1; i <= n; i++ {
		_ = g.AddNode(fmt.Sprintf("node-%d", i), Point{X: rng.Float64() * 800, Y: rng.Float64() * 600})
	}
	if n == 0 {
		return g
	}
	for i := 2; i <= n; i++ {
		from := fmt.Sprintf("node-%d", rng.IntN(i-1)+1)
		_ = g.AddEdge(from, fmt.Sprintf("node-%d", i), float64(rng.IntN(10)+1))
	}
	for k := 0; k < extra && n > 1; k++ {
		a, b := rng.IntN(n)+1, rng.IntN(n)+1
		if a == b {
			continue
		}
		_ = g.AddEdge(fmt.Sprintf("node-%d", a), fmt.Sprintf("node-%d", b), float64(rng.IntN(10)+1))
	}
	_ = g.SetStart("node-1")
	_ = g.SetTarget(fmt.Sprintf("node-%d", n))
	return g
}

// SampleGraph is a small fixed graph used for demos and tests.
func SampleGraph() *Graph {
	g := NewGraph()
	nodes := []NodeSpec{
		{"A", 0, 0}, {"B", 2, 0}, {"C", 0, 2}, {"D", 2, 2}, {"E", 4, 1}, {"F", 4, 3},
	}
	for _, n := range nodes {
		_ = g.AddNode(n.ID, Point{X: n.X, Y: n.Y})
	}
	for _, e := range []EdgeSpec{
		{"A", "B", 4}, {"A", "C", 2}, {"B", "C", 5}, {"B", "D", 10},
		{"C", "D", 3}, {"D", "E", 4}, {"B", "E", 11}, {"E", "F", 2}, {"D", "F", 7},
	} {
		_ = g.AddEdge(e.From, e.To, e.Weight)
	}
	_ = g.SetStart("A")
	_ = g.SetTarget("F")
	return g
}
