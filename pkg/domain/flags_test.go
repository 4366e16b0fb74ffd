package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagDelta_Apply(t *testing.T) {
	t.Run("merges without touching unmentioned flags", func(t *testing.T) {
		cur := FlagWall | FlagProcessing
		got := Mark(FlagVisited).Apply(cur)
		assert.Equal(t, FlagWall|FlagProcessing|FlagVisited, got)
	})

	t.Run("clear then set", func(t *testing.T) {
		got := Unmark(FlagProcessing).Then(Mark(FlagVisited)).Apply(FlagProcessing)
		assert.Equal(t, FlagVisited, got)
	})

	t.Run("found implies visited", func(t *testing.T) {
		got := Mark(FlagFound).Apply(0)
		assert.True(t, got.Has(FlagFound|FlagVisited))

		got = FlagDelta{Clear: FlagVisited}.Apply(FlagFound | FlagVisited)
		assert.True(t, got.Has(FlagVisited), "visited cannot be cleared while found")
	})

	t.Run("sorted is monotonic", func(t *testing.T) {
		got := Unmark(FlagSorted, FlagComparing).Apply(FlagSorted | FlagComparing)
		assert.Equal(t, FlagSorted, got)
	})
}

func TestFlagDelta_Then(t *testing.T) {
	d := Mark(FlagProcessing).Then(Unmark(FlagProcessing))
	assert.Equal(t, Flag(0), d.Set)
	assert.Equal(t, FlagProcessing, d.Clear)
}

func TestFlag_JSON(t *testing.T) {
	raw, err := json.Marshal(FlagStart | FlagPath)
	require.NoError(t, err)
	assert.JSONEq(t, `["path","start"]`, string(raw))

	var f Flag
	require.NoError(t, json.Unmarshal([]byte(`["wall","found","bogus"]`), &f))
	assert.Equal(t, FlagWall|FlagFound, f)
	assert.Equal(t, "found|wall", f.String())
	assert.Equal(t, "none", Flag(0).String())
}

func TestStats_Add(t *testing.T) {
	s := Stats{}
	s2 := s.Add(Tally{Ops: 1, Comparisons: 1, AuxBytes: 64})
	s3 := s2.Add(Tally{Ops: 2, Mutations: 1, AuxBytes: 32})

	assert.Equal(t, int64(0), s.Operations, "Add must not mutate the receiver")
	assert.Equal(t, int64(3), s3.Operations)
	assert.Equal(t, int64(1), s3.Comparisons)
	assert.Equal(t, int64(1), s3.Mutations)
	assert.Equal(t, uint64(64), s3.MemoryEstimate)

	merged := s3.Merge(Stats{Operations: 7, MemoryEstimate: 128})
	assert.Equal(t, int64(10), merged.Operations)
	assert.Equal(t, uint64(128), merged.MemoryEstimate)
}

func TestRunStatus(t *testing.T) {
	assert.True(t, StatusIdle.CanStart())
	assert.True(t, StatusCompleted.CanStart())
	assert.True(t, StatusCancelled.CanStart())
	assert.False(t, StatusRunning.CanStart())
	assert.False(t, StatusPaused.CanStart())
	assert.True(t, StatusPaused.Active())
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("dijkstra: %w: target not set", ErrMissingPrerequisite)
	assert.True(t, errors.Is(wrapped, ErrMissingPrerequisite))
	assert.Equal(t, CodeInvalidInput, CodeOf(wrapped))
	assert.Equal(t, CodeConflict, CodeOf(ErrAlreadyRunning))
	assert.Equal(t, CodeNotFound, CodeOf(fmt.Errorf("x: %w", ErrUnknownAlgorithm)))
	assert.Equal(t, CodeInternal, CodeOf(&Fault{Kind: KindDFS, Message: "boom"}))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestRunState_Clone(t *testing.T) {
	s := RunState{Status: StatusCompleted, Outcome: &Outcome{Found: true, Path: []string{"a", "b"}}}
	c := s.Clone()
	c.Outcome.Path[0] = "z"
	assert.Equal(t, "a", s.Outcome.Path[0])
}
