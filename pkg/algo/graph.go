package algo

import (
	"container/heap"
	"fmt"
	"math"
	"slices"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/viz"
)

func endpoints(kind domain.Kind, g viz.Topology, needTarget bool) (start, target string, err error) {
	start, ok := g.Start()
	if !ok {
		return "", "", fmt.Errorf("%s: %w: start is not set", kind, domain.ErrMissingPrerequisite)
	}
	target, ok = g.Target()
	if needTarget && !ok {
		return "", "", fmt.Errorf("%s: %w: target is not set", kind, domain.ErrMissingPrerequisite)
	}
	return start, target, nil
}

// trivialRoute answers a traversal over at most one node without steps.
func trivialRoute(g viz.Topology, start, target string) domain.Outcome {
	if target == "" || start == target {
		g.Mark(start, domain.Mark(domain.FlagVisited))
		out := domain.Outcome{Sequence: []string{start}, Index: -1}
		if target != "" {
			g.Mark(start, domain.Mark(domain.FlagFound, domain.FlagPath))
			out.Found, out.Path = true, []string{start}
		}
		return out
	}
	return domain.NotFound()
}

// route reconstructs the start→target path from predecessor links and marks it.
func route(g viz.Topology, prev map[string]string, start, target string) domain.Outcome {
	path := []string{target}
	for cur := target; cur != start; {
		cur = prev[cur]
		path = append(path, cur)
	}
	slices.Reverse(path)

	cost := 0.0
	for i, id := range path {
		g.Mark(id, domain.Mark(domain.FlagPath))
		if i > 0 {
			cost += arcWeight(g, path[i-1], id)
		}
	}
	g.Mark(target, domain.Mark(domain.FlagFound))
	return domain.Outcome{Found: true, Index: len(path) - 1, Path: path, Cost: cost}
}

func arcWeight(g viz.Topology, from, to string) float64 {
	for _, a := range g.Neighbors(from) {
		if a.To == to {
			return a.Weight
		}
	}
	return math.Inf(1)
}

// expand marks the popped node as processing for one step, then visited.
func expand(t *tracker, g viz.Topology, id string, tally domain.Tally) error {
	g.Mark(id, domain.Mark(domain.FlagProcessing))
	err := t.emit("visit "+id, tally)
	g.Mark(id, domain.FlagDelta{Set: domain.FlagVisited, Clear: domain.FlagProcessing})
	return err
}

type pending struct{ id, from string }

// DFS explores depth first with an explicit stack. Neighbors are pushed in
// reverse so the first neighbor is explored first. A target is optional.
func DFS(g viz.Topology) (Procedure, error) {
	start, target, err := endpoints(domain.KindDFS, g, false)
	if err != nil {
		return nil, err
	}
	return newProc(domain.KindDFS, func(t *tracker) (domain.Outcome, error) {
		if g.Len() <= 1 {
			return trivialRoute(g, start, target), nil
		}
		prev := map[string]string{}
		visited := map[string]bool{}
		var order []string
		stack := []pending{{id: start}}
		for len(stack) > 0 {
			t.aux = uint64(len(stack)+len(visited)) * 2 * wordBytes
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[p.id] {
				continue
			}
			visited[p.id] = true
			if p.from != "" {
				prev[p.id] = p.from
			}
			order = append(order, p.id)

			arcs := g.Neighbors(p.id)
			pushed := 0
			for i := len(arcs) - 1; i >= 0; i-- {
				if !visited[arcs[i].To] {
					stack = append(stack, pending{id: arcs[i].To, from: p.id})
					pushed++
				}
			}
			if err := expand(t, g, p.id, domain.Tally{Ops: 1, Comparisons: len(arcs), Mutations: pushed}); err != nil {
				return domain.Outcome{}, err
			}
			if p.id == target {
				out := route(g, prev, start, target)
				out.Sequence = order
				return out, nil
			}
		}
		return traversalEnd(order, target), nil
	}), nil
}

func traversalEnd(order []string, target string) domain.Outcome {
	if target != "" {
		out := domain.NotFound()
		out.Sequence = order
		return out
	}
	return domain.Outcome{Index: -1, Sequence: order}
}

// BFS explores breadth first. Nodes are queued once, on discovery.
func BFS(g viz.Topology) (Procedure, error) {
	start, target, err := endpoints(domain.KindBFS, g, false)
	if err != nil {
		return nil, err
	}
	return newProc(domain.KindBFS, func(t *tracker) (domain.Outcome, error) {
		if g.Len() <= 1 {
			return trivialRoute(g, start, target), nil
		}
		prev := map[string]string{}
		seen := map[string]bool{start: true}
		var order []string
		queue := []string{start}
		for len(queue) > 0 {
			t.aux = uint64(len(queue)+len(seen)) * 2 * wordBytes
			id := queue[0]
			queue = queue[1:]
			order = append(order, id)

			arcs := g.Neighbors(id)
			queued := 0
			for _, a := range arcs {
				if !seen[a.To] {
					seen[a.To] = true
					prev[a.To] = id
					queue = append(queue, a.To)
					queued++
				}
			}
			if err := expand(t, g, id, domain.Tally{Ops: 1, Comparisons: len(arcs), Mutations: queued}); err != nil {
				return domain.Outcome{}, err
			}
			if id == target {
				out := route(g, prev, start, target)
				out.Sequence = order
				return out, nil
			}
		}
		return traversalEnd(order, target), nil
	}), nil
}

// frontierItem orders by priority, then by insertion sequence.
type frontierItem struct {
	id   string
	prio float64
	seq  int
}

type frontier []frontierItem

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].prio != f[j].prio {
		return f[i].prio < f[j].prio
	}
	return f[i].seq < f[j].seq
}
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)   { *f = append(*f, x.(frontierItem)) }
func (f *frontier) Pop() any {
	old := *f
	it := old[len(old)-1]
	*f = old[:len(old)-1]
	return it
}

// Dijkstra expands nodes by accumulated cost.
func Dijkstra(g viz.Topology) (Procedure, error) {
	return bestFirst(domain.KindDijkstra, g, false)
}

// AStar expands nodes by cost plus a scaled Manhattan estimate.
func AStar(g viz.Topology) (Procedure, error) {
	return bestFirst(domain.KindAStar, g, true)
}

// manhattanScale returns the largest k for which k·manhattan(u,v) never
// exceeds the weight of arc u→v. With that scale the estimate
// k·manhattan(n, target) is consistent, hence admissible. On a unit-cost
// grid k is 1.
func manhattanScale(g viz.Topology) float64 {
	k := math.Inf(1)
	for _, id := range g.NodeIDs() {
		p := g.Position(id)
		for _, a := range g.Neighbors(id) {
			q := g.Position(a.To)
			if m := manhattan(p, q); m > 0 {
				k = min(k, a.Weight/m)
			}
		}
	}
	if math.IsInf(k, 1) {
		return 0
	}
	return k
}

func manhattan(p, q viz.Point) float64 {
	return math.Abs(p.X-q.X) + math.Abs(p.Y-q.Y)
}

func bestFirst(kind domain.Kind, g viz.Topology, heuristic bool) (Procedure, error) {
	start, target, err := endpoints(kind, g, true)
	if err != nil {
		return nil, err
	}
	return newProc(kind, func(t *tracker) (domain.Outcome, error) {
		if g.Len() <= 1 {
			return trivialRoute(g, start, target), nil
		}

		h := func(string) float64 { return 0 }
		if heuristic {
			k := manhattanScale(g)
			goal := g.Position(target)
			h = func(id string) float64 { return k * manhattan(g.Position(id), goal) }
		}

		dist := map[string]float64{start: 0}
		prev := map[string]string{}
		closed := map[string]bool{}
		seq := 0
		open := &frontier{{id: start, prio: h(start)}}

		for open.Len() > 0 {
			t.aux = uint64(open.Len()+len(dist)) * 3 * wordBytes
			it := heap.Pop(open).(frontierItem)
			if closed[it.id] {
				continue
			}
			closed[it.id] = true

			arcs := g.Neighbors(it.id)
			relaxed := 0
			if it.id != target {
				for _, a := range arcs {
					if closed[a.To] {
						continue
					}
					nd := dist[it.id] + a.Weight
					if d, ok := dist[a.To]; !ok || nd < d {
						dist[a.To] = nd
						prev[a.To] = it.id
						seq++
						heap.Push(open, frontierItem{id: a.To, prio: nd + h(a.To), seq: seq})
						relaxed++
					}
				}
			}
			if err := expand(t, g, it.id, domain.Tally{Ops: 1, Comparisons: len(arcs), Mutations: relaxed}); err != nil {
				return domain.Outcome{}, err
			}
			if it.id == target {
				out := route(g, prev, start, target)
				out.Cost = dist[target]
				return out, nil
			}
		}
		return domain.NotFound(), nil
	}), nil
}
