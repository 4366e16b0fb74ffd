package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func arrayFrame(version uint64, values ...float64) *Frame {
	f := &Frame{Family: FamilyArray, Version: version}
	for i, v := range values {
		f.Elements = append(f.Elements, Element{ID: string(rune('a' + i)), Value: v})
	}
	return f
}

func TestDiffFrames(t *testing.T) {
	tests := []struct {
		name        string
		prev, next  *Frame
		wantFull    bool
		wantChanged []string
		wantRemoved []string
		wantEmpty   bool
	}{
		{
			name:        "initial load",
			prev:        nil,
			next:        arrayFrame(1, 3, 1, 2),
			wantFull:    true,
			wantChanged: []string{"a", "b", "c"},
		},
		{
			name:      "no changes",
			prev:      arrayFrame(1, 3, 1, 2),
			next:      arrayFrame(2, 3, 1, 2),
			wantEmpty: true,
		},
		{
			name:        "value swap",
			prev:        arrayFrame(1, 3, 1, 2),
			next:        arrayFrame(2, 1, 3, 2),
			wantChanged: []string{"a", "b"},
		},
		{
			name:        "element removed",
			prev:        arrayFrame(1, 3, 1, 2),
			next:        arrayFrame(2, 3, 1),
			wantRemoved: []string{"c"},
		},
		{
			name:        "shape change is full",
			prev:        &Frame{Family: FamilyGrid, Rows: 2, Cols: 2},
			next:        &Frame{Family: FamilyGrid, Rows: 3, Cols: 3, Elements: []Element{{ID: "0:0"}}},
			wantFull:    true,
			wantChanged: []string{"0:0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff := DiffFrames(tt.prev, tt.next)
			require.NotNil(t, diff)
			assert.Equal(t, tt.next.Version, diff.Version)
			assert.Equal(t, tt.wantFull, diff.Full)
			assert.Equal(t, tt.wantEmpty, diff.Empty())

			var ids []string
			for _, e := range diff.Changed {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.wantChanged, ids)
			assert.Equal(t, tt.wantRemoved, diff.Removed)
		})
	}
}

func TestDiffFrames_FlagChange(t *testing.T) {
	prev := arrayFrame(1, 1, 2)
	next := arrayFrame(2, 1, 2)
	next.Elements[1].Flags = FlagSorted

	diff := DiffFrames(prev, next)
	require.Len(t, diff.Changed, 1)
	assert.Equal(t, "b", diff.Changed[0].ID)

	raw, err := json.Marshal(diff)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"flags":["sorted"]`)
}

func TestDiffFrames_EdgesOnlyWhenChanged(t *testing.T) {
	prev := &Frame{Family: FamilyGraph, Edges: []Edge{{From: "a", To: "b", Weight: 1}}}
	same := &Frame{Family: FamilyGraph, Edges: []Edge{{From: "a", To: "b", Weight: 1}}}
	grown := &Frame{Family: FamilyGraph, Edges: []Edge{{From: "a", To: "b", Weight: 1}, {From: "b", To: "c", Weight: 2}}}

	assert.Nil(t, DiffFrames(prev, same).Edges)
	assert.Len(t, DiffFrames(prev, grown).Edges, 2)
}

func TestDiffFrames_NilNext(t *testing.T) {
	assert.Nil(t, DiffFrames(arrayFrame(1, 1), nil))
}
