package registry

import (
	"testing"

	"github.com/aretw0/stepwise/pkg/algo"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/viz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_EveryKindRunsOnItsDefaultInput(t *testing.T) {
	r := Default()
	require.Len(t, r.List(), 30)

	for _, e := range r.List() {
		t.Run(string(e.Kind), func(t *testing.T) {
			c, params, err := r.Input(e.Kind, nil, viz.NewRand(7), 12)
			require.NoError(t, err)
			require.True(t, e.Supports(c.Family()))
			p, err := r.Prepare(e.Kind, c, params)
			require.NoError(t, err)
			assert.Equal(t, e.Kind, p.Kind())
			_, _, err = algo.Drain(p)
			require.NoError(t, err)
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Default().Lookup("bogo-sort")
	assert.ErrorIs(t, err, domain.ErrUnknownAlgorithm)
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err))
}

func TestPrepare_FamilyMismatch(t *testing.T) {
	r := Default()
	_, err := r.Prepare(domain.KindBubbleSort, viz.NewGrid(2, 2), nil)
	assert.ErrorIs(t, err, domain.ErrFamilyMismatch)

	_, err = r.Prepare(domain.KindBubbleSort, nil, nil)
	assert.ErrorIs(t, err, domain.ErrMissingPrerequisite)
}

func TestPrepare_TraversalsAcceptGraphs(t *testing.T) {
	r := Default()
	for _, kind := range []domain.Kind{domain.KindDFS, domain.KindBFS, domain.KindDijkstra, domain.KindAStar} {
		p, err := r.Prepare(kind, viz.SampleGraph(), nil)
		require.NoError(t, err, kind)
		_, _, err = algo.Drain(p)
		require.NoError(t, err)
	}
}

func TestPrepare_SearchNeedsTarget(t *testing.T) {
	r := Default()
	a := viz.NewArray([]int{1, 2, 3})
	_, err := r.Prepare(domain.KindLinearSearch, a, nil)
	assert.ErrorIs(t, err, domain.ErrMissingPrerequisite)

	p, err := r.Prepare(domain.KindLinearSearch, a, map[string]any{"target": "3"})
	require.NoError(t, err, "string params are weakly decoded")
	out, _, err := algo.Drain(p)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Index)

	_, err = r.Prepare(domain.KindBinarySearch, viz.NewArray([]int{3, 1}), map[string]any{"target": 1})
	assert.ErrorIs(t, err, domain.ErrMissingPrerequisite)
}

func TestInput_ParamsOverrideDefaults(t *testing.T) {
	r := Default()
	c, params, err := r.Input(domain.KindFibonacci, map[string]any{"n": 6}, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, params["n"])
	p, err := r.Prepare(domain.KindFibonacci, c, params)
	require.NoError(t, err)
	out, _, err := algo.Drain(p)
	require.NoError(t, err)
	assert.Equal(t, 8.0, out.Value)

	_, _, err = r.Input(domain.KindFibonacci, map[string]any{"n": 500}, nil, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidParams)
	_, _, err = r.Input(domain.KindMatrixRotate, map[string]any{"n": "x"}, nil, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidParams)
}

func TestComparable(t *testing.T) {
	r := Default()
	sorting, _ := r.Lookup(domain.KindQuickSort)
	dp, _ := r.Lookup(domain.KindKnapsack)
	assert.True(t, sorting.Comparable())
	assert.False(t, dp.Comparable())
}

func TestRegister_KeepsOrderAndOverwrites(t *testing.T) {
	r := New()
	r.Register(Entry{Kind: "a", Family: domain.FamilyArray, Title: "first"})
	r.Register(Entry{Kind: "b", Family: domain.FamilyArray})
	r.Register(Entry{Kind: "a", Family: domain.FamilyArray, Title: "second"})

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, domain.Kind("a"), list[0].Kind)
	assert.Equal(t, "second", list[0].Title)
	assert.Equal(t, []domain.Family{domain.FamilyArray}, list[1].Accepts)
}

func TestMergeParams(t *testing.T) {
	base := map[string]any{"n": 1, "k": 2}
	out := MergeParams(base, map[string]any{"n": 5})
	assert.Equal(t, map[string]any{"n": 5, "k": 2}, out)
	assert.Equal(t, 1, base["n"])
}
