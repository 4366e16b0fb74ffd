package domain

// Element is one rendered unit of a container.
type Element struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
	Label string  `json:"label,omitempty"`
	Flags Flag    `json:"flags"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
}

// Edge links two elements of a graph or tree frame.
type Edge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight,omitempty"`
	Label  string  `json:"label,omitempty"`
}

// Frame is an immutable copy of a container taken between steps.
type Frame struct {
	Family   Family    `json:"family"`
	Version  uint64    `json:"version"`
	Rows     int       `json:"rows,omitempty"`
	Cols     int       `json:"cols,omitempty"`
	Elements []Element `json:"elements"`
	Edges    []Edge    `json:"edges,omitempty"`
	// Headers carries row and column captions for tables.
	Headers map[string][]string `json:"headers,omitempty"`
}

// Find returns the element with the given id.
func (f *Frame) Find(id string) (Element, bool) {
	for _, e := range f.Elements {
		if e.ID == id {
			return e, true
		}
	}
	return Element{}, false
}

// Count returns how many elements carry every flag in mask.
func (f *Frame) Count(mask Flag) int {
	n := 0
	for _, e := range f.Elements {
		if e.Flags.Has(mask) {
			n++
		}
	}
	return n
}

// Values returns the element values in order.
func (f *Frame) Values() []float64 {
	out := make([]float64, len(f.Elements))
	for i, e := range f.Elements {
		out[i] = e.Value
	}
	return out
}
