package domain

// FrameDiff represents the changes between two frames of the same container.
// It is designed to be serialized to JSON for partial updates on the client.
type FrameDiff struct {
	Version uint64 `json:"version"`

	// Full is set when the shape changed or there is no previous frame;
	// Changed then holds every element.
	Full bool `json:"full,omitempty"`

	Changed []Element `json:"changed,omitempty"`
	Removed []string  `json:"removed,omitempty"`

	// Edges is only sent when the edge set changed.
	Edges []Edge `json:"edges,omitempty"`
}

// Empty reports whether the diff carries no changes.
func (d *FrameDiff) Empty() bool {
	return !d.Full && len(d.Changed) == 0 && len(d.Removed) == 0 && d.Edges == nil
}

// DiffFrames calculates the difference between prev and next.
// If prev is nil, it returns a full diff representing next (initial load).
func DiffFrames(prev, next *Frame) *FrameDiff {
	if next == nil {
		return nil
	}

	diff := &FrameDiff{Version: next.Version}

	if prev == nil || prev.Family != next.Family || prev.Rows != next.Rows || prev.Cols != next.Cols {
		diff.Full = true
		diff.Changed = append([]Element(nil), next.Elements...)
		diff.Edges = append([]Edge(nil), next.Edges...)
		return diff
	}

	old := make(map[string]Element, len(prev.Elements))
	for _, e := range prev.Elements {
		old[e.ID] = e
	}
	for _, e := range next.Elements {
		if o, ok := old[e.ID]; !ok || o != e {
			diff.Changed = append(diff.Changed, e)
		}
		delete(old, e.ID)
	}
	for _, e := range prev.Elements {
		if _, gone := old[e.ID]; gone {
			diff.Removed = append(diff.Removed, e.ID)
		}
	}

	if !sameEdges(prev.Edges, next.Edges) {
		diff.Edges = append([]Edge{}, next.Edges...)
	}
	return diff
}

func sameEdges(a, b []Edge) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
