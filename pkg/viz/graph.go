package viz

import (
	"fmt"
	"sync"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Graph is an undirected weighted graph with positioned nodes.
// Neighbor order follows edge insertion order.
type Graph struct {
	*Store[string, Point]

	mu    sync.RWMutex
	adj   map[string][]Arc
	edges []domain.Edge
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Store: NewStore[string, Point](nil, nil),
		adj:   make(map[string][]Arc),
	}
}

func (g *Graph) Family() domain.Family { return domain.FamilyGraph }

// AddNode inserts a node at the given position.
func (g *Graph) AddNode(id string, at Point) error {
	if id == "" {
		return fmt.Errorf("%w: node id is empty", domain.ErrInvalidParams)
	}
	return g.Store.edit(func() error {
		if err := g.Store.add(id, at, 0); err != nil {
			return err
		}
		g.mu.Lock()
		g.adj[id] = nil
		g.mu.Unlock()
		return nil
	})
}

// AddEdge connects two existing nodes, replacing the weight of an existing edge.
func (g *Graph) AddEdge(from, to string, weight float64) error {
	if from == to {
		return fmt.Errorf("%w: self loop on %s", domain.ErrInvalidParams, from)
	}
	if weight < 0 {
		return fmt.Errorf("%w: negative weight %v", domain.ErrInvalidParams, weight)
	}
	return g.Store.edit(func() error {
		for _, id := range []string{from, to} {
			if _, ok := g.index[id]; !ok {
				return fmt.Errorf("%w: node %s", domain.ErrElementNotFound, id)
			}
		}

		g.mu.Lock()
		defer g.mu.Unlock()
		for i, e := range g.edges {
			if (e.From == from && e.To == to) || (e.From == to && e.To == from) {
				g.edges[i].Weight = weight
				g.setArc(from, to, weight)
				g.setArc(to, from, weight)
				return nil
			}
		}
		g.edges = append(g.edges, domain.Edge{From: from, To: to, Weight: weight})
		g.adj[from] = append(g.adj[from], Arc{To: to, Weight: weight})
		g.adj[to] = append(g.adj[to], Arc{To: from, Weight: weight})
		return nil
	})
}

func (g *Graph) setArc(from, to string, w float64) {
	for i, a := range g.adj[from] {
		if a.To == to {
			g.adj[from][i].Weight = w
		}
	}
}

// Edges returns each undirected edge once, in insertion order.
func (g *Graph) Edges() []domain.Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]domain.Edge(nil), g.edges...)
}

// SetStart marks the traversal origin.
func (g *Graph) SetStart(id string) error { return g.moveMarker(domain.FlagStart, id) }

// SetTarget marks the traversal goal.
func (g *Graph) SetTarget(id string) error { return g.moveMarker(domain.FlagTarget, id) }

func (g *Graph) moveMarker(marker domain.Flag, id string) error {
	return g.Store.edit(func() error {
		return g.placeMarker(marker, id, domain.FlagDelta{})
	})
}

func (g *Graph) ClearRunFlags() { g.ClearFlags(domain.RunFlags) }

func (g *Graph) NodeIDs() []string { return g.Keys() }

func (g *Graph) Neighbors(id string) []Arc {
	g.mu.RLock()
	defer g.mu.RUnlock()
	arcs, ok := g.adj[id]
	if !ok {
		panic("viz: unknown node " + id)
	}
	return append([]Arc(nil), arcs...)
}

func (g *Graph) Position(id string) Point { return g.Value(id) }

func (g *Graph) Start() (string, bool)  { return g.Find(domain.FlagStart) }
func (g *Graph) Target() (string, bool) { return g.Find(domain.FlagTarget) }

func (g *Graph) NodeFlags(id string) domain.Flag { return g.Store.Flags(id) }

func (g *Graph) Mark(id string, delta domain.FlagDelta) { g.SetFlags(id, delta) }

func (g *Graph) Frame() *domain.Frame {
	snap := g.Snapshot()
	f := &domain.Frame{
		Family:   domain.FamilyGraph,
		Version:  snap.Version,
		Elements: make([]domain.Element, len(snap.Keys)),
		Edges:    g.Edges(),
	}
	for i, id := range snap.Keys {
		p := snap.Values[i]
		f.Elements[i] = domain.Element{ID: id, Flags: snap.Flags[i], X: p.X, Y: p.Y}
	}
	return f
}

// Clear removes every node and edge.
func (g *Graph) Clear() error {
	return g.Store.edit(func() error {
		g.load(nil, nil)
		g.mu.Lock()
		g.adj = make(map[string][]Arc)
		g.edges = nil
		g.mu.Unlock()
		return nil
	})
}
