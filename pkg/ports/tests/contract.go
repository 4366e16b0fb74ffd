// Package tests holds contract suites shared by port implementations.
package tests

import (
	"context"
	"testing"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/aretw0/stepwise/pkg/viz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// PresetStoreContract verifies that an adapter complies with ports.PresetStore.
// The store must start empty.
func PresetStoreContract(t *testing.T, store ports.PresetStore) {
	t.Helper()
	ctx := context.Background()

	maze := ports.Preset{
		Name: "maze",
		Kind: domain.KindAStar,
		Spec: viz.Spec{
			Family: domain.FamilyGrid,
			Rows:   3,
			Cols:   4,
			Walls:  []string{"1:1", "1:2"},
			Start:  "0:0",
			Target: "2:3",
		},
	}
	sorted := ports.Preset{
		Name:   "sorted-ten",
		Kind:   domain.KindBinarySearch,
		Params: map[string]any{"target": 7},
		Spec:   viz.Spec{Family: domain.FamilyArray, Values: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
	}

	t.Run("Save_Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, maze))
		got, err := store.Load(ctx, "maze")
		require.NoError(t, err)
		assert.Equal(t, maze.Kind, got.Kind)
		assert.Equal(t, maze.Spec, got.Spec)
		assert.False(t, got.UpdatedAt.IsZero(), "stores stamp UpdatedAt")

		c, err := got.Spec.Build()
		require.NoError(t, err)
		assert.Equal(t, 12, c.Len())
	})

	t.Run("Params", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sorted))
		got, err := store.Load(ctx, "sorted-ten")
		require.NoError(t, err)
		assert.EqualValues(t, 7, got.Params["target"])
		assert.Equal(t, sorted.Spec.Values, got.Spec.Values)
	})

	t.Run("Overwrite", func(t *testing.T) {
		changed := maze
		changed.Spec.Walls = nil
		require.NoError(t, store.Save(ctx, changed))
		got, err := store.Load(ctx, "maze")
		require.NoError(t, err)
		assert.Empty(t, got.Spec.Walls)
	})

	t.Run("Normalizes_Names", func(t *testing.T) {
		got, err := store.Load(ctx, "  MAZE ")
		require.NoError(t, err)
		assert.Equal(t, "maze", got.Name)

		err = store.Save(ctx, ports.Preset{Name: "../escape", Spec: maze.Spec})
		assert.ErrorIs(t, err, domain.ErrInvalidParams)
	})

	t.Run("List", func(t *testing.T) {
		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"maze", "sorted-ten"}, names)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := store.Load(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrPresetNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "maze"))
		require.NoError(t, store.Delete(ctx, "maze"), "deleting twice is fine")
		_, err := store.Load(ctx, "maze")
		assert.ErrorIs(t, err, domain.ErrPresetNotFound)

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"sorted-ten"}, names)
	})
}
