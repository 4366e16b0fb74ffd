package viz

import "github.com/aretw0/stepwise/pkg/domain"

// Container is the family-independent view the Runner works with.
type Container interface {
	Family() domain.Family
	Len() int
	Frame() *domain.Frame
	ClearRunFlags()
	Freeze()
	Thaw()
	Frozen() bool
	Version() uint64
}

// Point is a 2-D coordinate used by the A* heuristic and by renderers.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Arc is an outgoing connection in a Topology.
type Arc struct {
	To     string
	Weight float64
}

// Topology is the view of a grid or graph that traversal and shortest-path
// algorithms work against.
type Topology interface {
	Container
	NodeIDs() []string
	Neighbors(id string) []Arc
	Position(id string) Point
	Start() (string, bool)
	Target() (string, bool)
	NodeFlags(id string) domain.Flag
	Mark(id string, delta domain.FlagDelta)
}
