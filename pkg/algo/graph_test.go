package algo

import (
	"container/heap"
	"math"
	"testing"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/viz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shortest computes the reference distance with Bellman-Ford relaxation.
func shortest(g viz.Topology, from, to string) float64 {
	dist := map[string]float64{}
	for _, id := range g.NodeIDs() {
		dist[id] = math.Inf(1)
	}
	dist[from] = 0
	for range g.NodeIDs() {
		for _, u := range g.NodeIDs() {
			for _, a := range g.Neighbors(u) {
				if dist[u]+a.Weight < dist[a.To] {
					dist[a.To] = dist[u] + a.Weight
				}
			}
		}
	}
	return dist[to]
}

func pathWeight(g viz.Topology, path []string) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += arcWeight(g, path[i-1], path[i])
	}
	return total
}

func TestShortestPath_Optimality(t *testing.T) {
	rng := viz.NewRand(5)
	var topologies []func() viz.Topology
	for i := 0; i < 20; i++ {
		seed := rng.Uint64()
		topologies = append(topologies,
			func() viz.Topology {
				g := viz.RandomGrid(viz.NewRand(seed), 7, 9, 0.25)
				r := viz.NewRand(seed + 1)
				for k := 0; k < 10; k++ {
					_ = g.SetWeight(r.IntN(7), r.IntN(9), r.IntN(5)+1)
				}
				return g
			},
			func() viz.Topology { return viz.RandomGraph(viz.NewRand(seed), 12, 10) },
		)
	}
	topologies = append(topologies, func() viz.Topology { return viz.SampleGraph() })

	for i, build := range topologies {
		ref := build()
		start, _ := ref.Start()
		target, _ := ref.Target()
		want := shortest(ref, start, target)

		var costs []float64
		for _, algo := range []func(viz.Topology) (Procedure, error){Dijkstra, AStar} {
			g := build()
			p, err := algo(g)
			require.NoError(t, err)
			out, _, err := Drain(p)
			require.NoError(t, err)

			if math.IsInf(want, 1) {
				require.False(t, out.Found, "case %d: no path expected", i)
				continue
			}
			require.True(t, out.Found, "case %d", i)
			require.InDelta(t, want, out.Cost, 1e-9, "case %d %s", i, p.Kind())
			require.InDelta(t, want, pathWeight(g, out.Path), 1e-9, "case %d path weight", i)
			assert.Equal(t, start, out.Path[0])
			assert.Equal(t, target, out.Path[len(out.Path)-1])
			assert.True(t, g.NodeFlags(target).Has(domain.FlagFound|domain.FlagVisited|domain.FlagPath))
			costs = append(costs, out.Cost)
		}
		if len(costs) == 2 {
			assert.Equal(t, costs[0], costs[1], "case %d: dijkstra and A* agree", i)
		}
	}
}

func TestSampleGraph_Dijkstra(t *testing.T) {
	g := viz.SampleGraph()
	p, err := Dijkstra(g)
	require.NoError(t, err)
	out, _, err := Drain(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "D", "E", "F"}, out.Path)
	assert.Equal(t, 11.0, out.Cost)
}

func TestAStar_ExpandsNoMoreThanDijkstraOnOpenGrid(t *testing.T) {
	build := func() *viz.Grid {
		g := viz.NewGrid(8, 8)
		require.NoError(t, g.SetStart(0, 0))
		require.NoError(t, g.SetTarget(7, 7))
		return g
	}
	count := func(fn func(viz.Topology) (Procedure, error)) int64 {
		p, err := fn(build())
		require.NoError(t, err)
		_, stats, err := Drain(p)
		require.NoError(t, err)
		return stats.Operations
	}
	assert.LessOrEqual(t, count(AStar), count(Dijkstra))
	assert.Equal(t, 1.0, manhattanScale(build()))
}

func TestTraversals_Order(t *testing.T) {
	g := viz.NewGraph()
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, g.AddNode(id, viz.Point{}))
	}
	for _, e := range [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "e"}} {
		require.NoError(t, g.AddEdge(e[0], e[1], 1))
	}
	require.NoError(t, g.SetStart("a"))

	p, err := DFS(g)
	require.NoError(t, err)
	out, _, err := Drain(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "d", "c", "e"}, out.Sequence)
	assert.False(t, out.Found)
	assert.Equal(t, 5, g.Frame().Count(domain.FlagVisited))

	g.ClearRunFlags()
	p, err = BFS(g)
	require.NoError(t, err)
	out, _, err = Drain(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, out.Sequence)
}

func TestBFS_StopsAtTarget(t *testing.T) {
	g := viz.NewGrid(3, 3)
	require.NoError(t, g.SetStart(0, 0))
	require.NoError(t, g.SetTarget(0, 2))
	p, err := BFS(g)
	require.NoError(t, err)
	out, _, err := Drain(p)
	require.NoError(t, err)
	assert.True(t, out.Found)
	assert.Equal(t, []string{"0:0", "0:1", "0:2"}, out.Path)
}

func TestTraversals_MissingEndpoints(t *testing.T) {
	g := viz.NewGrid(3, 3)
	_, err := DFS(g)
	assert.ErrorIs(t, err, domain.ErrMissingPrerequisite)

	require.NoError(t, g.SetStart(0, 0))
	_, err = BFS(g)
	assert.NoError(t, err)
	_, err = Dijkstra(g)
	assert.ErrorIs(t, err, domain.ErrMissingPrerequisite)
	_, err = AStar(g)
	assert.ErrorIs(t, err, domain.ErrMissingPrerequisite)
}

func TestDijkstra_NoPathIsNormalOutcome(t *testing.T) {
	g := viz.NewGrid(3, 3)
	require.NoError(t, g.SetStart(0, 0))
	require.NoError(t, g.SetTarget(2, 2))
	for _, c := range [][2]int{{0, 1}, {1, 0}, {1, 1}} {
		require.NoError(t, g.ToggleWall(c[0], c[1]))
	}
	p, err := Dijkstra(g)
	require.NoError(t, err)
	out, stats, err := Drain(p)
	require.NoError(t, err)
	assert.False(t, out.Found)
	assert.Equal(t, int64(1), stats.Operations)
	assert.Zero(t, g.Frame().Count(domain.FlagPath))
}

func TestFrontier_TieBreakIsInsertionOrder(t *testing.T) {
	f := &frontier{}
	for i, id := range []string{"x", "y", "z"} {
		heapPush(f, frontierItem{id: id, prio: 1, seq: i})
	}
	var got []string
	for f.Len() > 0 {
		got = append(got, heapPop(f).id)
	}
	assert.Equal(t, []string{"x", "y", "z"}, got)
}

func heapPush(f *frontier, it frontierItem) { heap.Push(f, it) }
func heapPop(f *frontier) frontierItem     { return heap.Pop(f).(frontierItem) }
