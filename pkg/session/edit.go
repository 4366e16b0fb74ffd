package session

import (
	"context"
	"fmt"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/viz"
)

// Edit operations.
const (
	EditToggleWall = "toggle-wall"
	EditSetWeight  = "set-weight"
	EditSetStart   = "set-start"
	EditSetTarget  = "set-target"
	EditAddNode    = "add-node"
	EditAddEdge    = "add-edge"
	EditInsert     = "insert"
	EditDelete     = "delete"
	EditUpdate     = "update"
)

// Edit is a structural change to a workspace container. Grids read Row and
// Col, graphs read Node (and To, Weight for edges, X, Y for nodes), arrays
// read Index and Value. A missing array Index or Value is drawn from the
// workspace RNG.
type Edit struct {
	Op     string  `json:"op" validate:"required,oneof=toggle-wall set-weight set-start set-target add-node add-edge insert delete update"`
	Row    int     `json:"row,omitempty" validate:"min=0"`
	Col    int     `json:"col,omitempty" validate:"min=0"`
	Node   string  `json:"node,omitempty" validate:"max=64"`
	To     string  `json:"to,omitempty" validate:"max=64"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Weight float64 `json:"weight,omitempty" validate:"min=0"`
	Index  *int    `json:"index,omitempty" validate:"omitempty,min=0"`
	Value  *int    `json:"value,omitempty"`
}

// Edit applies e to the workspace container and announces the new frame to
// subscribers. Rejected with ErrStructureLocked while a run is active.
func (m *Manager) Edit(ctx context.Context, id string, e Edit) (*domain.Frame, error) {
	if err := m.validate.Struct(e); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidParams, err)
	}
	var frame *domain.Frame
	err := m.WithLock(ctx, id, func(ctx context.Context, ws *Workspace) error {
		if err := unlocked(ws); err != nil {
			return err
		}
		c := ws.Container()
		if c == nil {
			return fmt.Errorf("%w: workspace has no container", domain.ErrMissingPrerequisite)
		}
		if err := apply(ws, c, e); err != nil {
			return err
		}
		frame = c.Frame()
		ws.runner.Announce(ctx, c, e.Op)
		return nil
	})
	if err == nil {
		m.logger.Debug("workspace edited", "workspace_id", id, "op", e.Op)
	}
	return frame, err
}

func apply(ws *Workspace, c viz.Container, e Edit) error {
	switch c := c.(type) {
	case *viz.Grid:
		switch e.Op {
		case EditToggleWall:
			return c.ToggleWall(e.Row, e.Col)
		case EditSetWeight:
			return c.SetWeight(e.Row, e.Col, int(e.Weight))
		case EditSetStart:
			return c.SetStart(e.Row, e.Col)
		case EditSetTarget:
			return c.SetTarget(e.Row, e.Col)
		}
	case *viz.Graph:
		switch e.Op {
		case EditAddNode:
			return c.AddNode(e.Node, viz.Point{X: e.X, Y: e.Y})
		case EditAddEdge:
			return c.AddEdge(e.Node, e.To, e.Weight)
		case EditSetStart:
			return c.SetStart(e.Node)
		case EditSetTarget:
			return c.SetTarget(e.Node)
		}
	case *viz.Array:
		n := c.Len()
		switch e.Op {
		case EditInsert:
			return c.Insert(ws.pick(e.Index, n+1), ws.value(e.Value))
		case EditDelete:
			if n == 0 {
				return fmt.Errorf("%w: array is empty", domain.ErrElementNotFound)
			}
			return c.Delete(ws.pick(e.Index, n))
		case EditUpdate:
			if n == 0 {
				return fmt.Errorf("%w: array is empty", domain.ErrElementNotFound)
			}
			return c.Update(ws.pick(e.Index, n), ws.value(e.Value))
		}
	}
	return fmt.Errorf("%w: %s does not apply to a %s container", domain.ErrInvalidParams, e.Op, c.Family())
}

// pick returns *i, or a random index below n. Callers hold the workspace lock.
func (w *Workspace) pick(i *int, n int) int {
	if i != nil {
		return *i
	}
	return w.rng.IntN(n)
}

func (w *Workspace) value(v *int) int {
	if v != nil {
		return *v
	}
	return viz.RandomValues(w.rng, 1)[0]
}
