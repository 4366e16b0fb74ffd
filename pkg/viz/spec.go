package viz

import (
	"fmt"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Spec is a serializable description of a container. It is the format of
// presets and of container files passed to the CLI.
type Spec struct {
	Family domain.Family `json:"family" yaml:"family" validate:"required"`

	// Array and tree keys.
	Values []int `json:"values,omitempty" yaml:"values,omitempty"`

	// Grid and table shape.
	Rows    int            `json:"rows,omitempty" yaml:"rows,omitempty" validate:"gte=0,lte=200"`
	Cols    int            `json:"cols,omitempty" yaml:"cols,omitempty" validate:"gte=0,lte=200"`
	Walls   []string       `json:"walls,omitempty" yaml:"walls,omitempty"`
	Weights map[string]int `json:"weights,omitempty" yaml:"weights,omitempty"`

	// Grid cell ids or graph node ids.
	Start  string `json:"start,omitempty" yaml:"start,omitempty"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`

	Nodes []NodeSpec `json:"nodes,omitempty" yaml:"nodes,omitempty" validate:"dive"`
	Edges []EdgeSpec `json:"edges,omitempty" yaml:"edges,omitempty" validate:"dive"`

	Matrix [][]int64 `json:"matrix,omitempty" yaml:"matrix,omitempty"`
	Board  string    `json:"board,omitempty" yaml:"board,omitempty"`

	// Population size and gene count; genes are drawn from Seed.
	Size  int    `json:"size,omitempty" yaml:"size,omitempty"`
	Genes int    `json:"genes,omitempty" yaml:"genes,omitempty"`
	Seed  uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// NodeSpec describes a graph node.
type NodeSpec struct {
	ID string  `json:"id" yaml:"id" validate:"required"`
	X  float64 `json:"x" yaml:"x"`
	Y  float64 `json:"y" yaml:"y"`
}

// EdgeSpec describes an undirected graph edge.
type EdgeSpec struct {
	From   string  `json:"from" yaml:"from" validate:"required"`
	To     string  `json:"to" yaml:"to" validate:"required"`
	Weight float64 `json:"weight" yaml:"weight" validate:"gte=0"`
}

// Build creates the container s describes.
func (s Spec) Build() (Container, error) {
	switch s.Family {
	case domain.FamilyArray:
		return NewArray(s.Values), nil
	case domain.FamilyTree:
		return BuildBST(s.Values), nil
	case domain.FamilyGrid:
		return s.buildGrid()
	case domain.FamilyGraph:
		return s.buildGraph()
	case domain.FamilyTable:
		if len(s.Matrix) > 0 {
			for _, row := range s.Matrix {
				if len(row) != len(s.Matrix[0]) {
					return nil, fmt.Errorf("%w: ragged matrix", domain.ErrInvalidParams)
				}
			}
			return NewMatrix(s.Matrix), nil
		}
		return NewTable(s.Rows, s.Cols), nil
	case domain.FamilyBoard:
		if s.Board == "" {
			return NewBoard(Cells{}), nil
		}
		c, err := ParseCells(s.Board)
		if err != nil {
			return nil, err
		}
		return NewBoard(c), nil
	case domain.FamilyPopulation:
		size, genes := s.Size, s.Genes
		if size == 0 {
			size = DefaultPopulation
		}
		if genes == 0 {
			genes = DefaultGenes
		}
		return NewPopulation(NewRand(s.Seed), size, genes), nil
	default:
		return nil, fmt.Errorf("%w: unknown family %q", domain.ErrInvalidParams, s.Family)
	}
}

func (s Spec) buildGrid() (*Grid, error) {
	if s.Rows < 1 || s.Cols < 1 {
		return nil, fmt.Errorf("%w: grid needs positive rows and cols", domain.ErrInvalidParams)
	}
	g := NewGrid(s.Rows, s.Cols)
	for _, id := range s.Walls {
		r, c, ok := ParseCellID(id)
		if !ok {
			return nil, fmt.Errorf("%w: wall %q", domain.ErrInvalidParams, id)
		}
		if err := g.ToggleWall(r, c); err != nil {
			return nil, err
		}
	}
	for id, w := range s.Weights {
		r, c, ok := ParseCellID(id)
		if !ok {
			return nil, fmt.Errorf("%w: weight cell %q", domain.ErrInvalidParams, id)
		}
		if err := g.SetWeight(r, c, w); err != nil {
			return nil, err
		}
	}
	for _, m := range []struct {
		id  string
		set func(r, c int) error
	}{{s.Start, g.SetStart}, {s.Target, g.SetTarget}} {
		if m.id == "" {
			continue
		}
		r, c, ok := ParseCellID(m.id)
		if !ok {
			return nil, fmt.Errorf("%w: cell %q", domain.ErrInvalidParams, m.id)
		}
		if err := m.set(r, c); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (s Spec) buildGraph() (*Graph, error) {
	g := NewGraph()
	for _, n := range s.Nodes {
		if err := g.AddNode(n.ID, Point{X: n.X, Y: n.Y}); err != nil {
			return nil, err
		}
	}
	for _, e := range s.Edges {
		if err := g.AddEdge(e.From, e.To, e.Weight); err != nil {
			return nil, err
		}
	}
	if s.Start != "" {
		if err := g.SetStart(s.Start); err != nil {
			return nil, err
		}
	}
	if s.Target != "" {
		if err := g.SetTarget(s.Target); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Describe captures the structure of a container as a Spec. Run flags are
// not part of the description.
func Describe(c Container) (Spec, error) {
	switch v := c.(type) {
	case *Array:
		return Spec{Family: domain.FamilyArray, Values: v.Values()}, nil
	case *Tree:
		return Spec{Family: domain.FamilyTree, Values: v.Snapshot().Values}, nil
	case *Grid:
		s := Spec{Family: domain.FamilyGrid, Rows: v.rows, Cols: v.cols}
		snap := v.Snapshot()
		for i, f := range snap.Flags {
			id := CellID(i/v.cols, i%v.cols)
			if f.Has(domain.FlagWall) {
				s.Walls = append(s.Walls, id)
			}
			if snap.Values[i] != 1 {
				if s.Weights == nil {
					s.Weights = make(map[string]int)
				}
				s.Weights[id] = snap.Values[i]
			}
		}
		s.Start, _ = v.Start()
		s.Target, _ = v.Target()
		return s, nil
	case *Graph:
		s := Spec{Family: domain.FamilyGraph}
		snap := v.Snapshot()
		for i, id := range snap.Keys {
			s.Nodes = append(s.Nodes, NodeSpec{ID: id, X: snap.Values[i].X, Y: snap.Values[i].Y})
		}
		for _, e := range v.Edges() {
			s.Edges = append(s.Edges, EdgeSpec{From: e.From, To: e.To, Weight: e.Weight})
		}
		s.Start, _ = v.Start()
		s.Target, _ = v.Target()
		return s, nil
	case *Table:
		return Spec{Family: domain.FamilyTable, Rows: v.rows, Cols: v.cols, Matrix: v.Matrix()}, nil
	case *Board:
		return Spec{Family: domain.FamilyBoard, Board: v.Cells().String()}, nil
	case *Population:
		return Spec{}, fmt.Errorf("%w: populations are generated, not described", domain.ErrInvalidParams)
	default:
		return Spec{}, fmt.Errorf("%w: unsupported container %T", domain.ErrInvalidParams, c)
	}
}
