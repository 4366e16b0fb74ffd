package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/stepwise/pkg/adapters/memory"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/aretw0/stepwise/pkg/ports/tests"
	"github.com/aretw0/stepwise/pkg/viz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.PresetStore = (*memory.Store)(nil)

func TestMemoryStore_Contract(t *testing.T) {
	tests.PresetStoreContract(t, memory.NewStore())
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	p := ports.Preset{Name: "arr", Spec: viz.Spec{Family: domain.FamilyArray, Values: []int{3, 1, 2}}}
	require.NoError(t, store.Save(ctx, p))
	p.Spec.Values[0] = 99

	got, err := store.Load(ctx, "arr")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2}, got.Spec.Values)

	got.Spec.Values[1] = 42
	again, err := store.Load(ctx, "arr")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2}, again.Spec.Values)
}
