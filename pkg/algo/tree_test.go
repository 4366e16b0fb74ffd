package algo

import (
	"math"
	"slices"
	"sort"
	"testing"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/viz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkAVL verifies ordering, stored heights and balance for every node.
func checkAVL(t *testing.T, tr *viz.Tree, n int) int {
	t.Helper()
	if n == viz.None {
		return 0
	}
	l, r := checkAVL(t, tr, tr.Left(n)), checkAVL(t, tr, tr.Right(n))
	require.LessOrEqual(t, l-r, 1, "node %d", tr.Key(n))
	require.GreaterOrEqual(t, l-r, -1, "node %d", tr.Key(n))
	require.Equal(t, 1+max(l, r), tr.Height(n), "stored height of %d", tr.Key(n))
	return 1 + max(l, r)
}

func TestAVLInsert_SequentialKeysBalance(t *testing.T) {
	tr := viz.NewTree([]int{1, 2, 3, 4, 5, 6, 7})
	out, _, err := Drain(AVLInsert(tr))
	require.NoError(t, err)

	assert.Equal(t, 4, tr.Key(tr.Root()))
	assert.Equal(t, 3.0, out.Value)
	assert.Equal(t, "4 rotations", out.Detail)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, tr.InorderKeys())
	checkAVL(t, tr, tr.Root())
}

func TestAVLInsert_RandomKeysStayBalanced(t *testing.T) {
	rng := viz.NewRand(11)
	for round := 0; round < 30; round++ {
		n := rng.IntN(60) + 2
		keys := make([]int, n)
		for i := range keys {
			keys[i] = rng.IntN(40)
		}
		tr := viz.NewTree(keys)
		_, _, err := Drain(AVLInsert(tr))
		require.NoError(t, err)

		want := slices.Clone(keys)
		sort.Ints(want)
		require.Equal(t, want, tr.InorderKeys())
		h := checkAVL(t, tr, tr.Root())
		assert.LessOrEqual(t, float64(h), 1.45*math.Log2(float64(n)+2), "round %d", round)
		for slot := range keys {
			assert.True(t, tr.Attached(slot))
		}
	}
}

func TestBSTInsert_Degenerates(t *testing.T) {
	tr := viz.BuildBST([]int{9, 9, 9})
	out, stats, err := Drain(BSTInsert(tr))
	require.NoError(t, err)
	assert.Equal(t, 3.0, out.Value, "equal keys chain to the right")
	assert.Equal(t, 1, tr.Right(0))
	assert.Equal(t, int64(3+0+1+2), stats.Operations, "three inserts and three comparisons")
}

func TestBSTSearch(t *testing.T) {
	tr := viz.BuildBST([]int{50, 30, 70, 20, 40, 60, 80})
	p, err := BSTSearch(tr, 60)
	require.NoError(t, err)
	out, got := labels(t, p)
	assert.Equal(t, []string{"compare 60 with 50", "compare 60 with 70", "compare 60 with 60"}, got)
	assert.Equal(t, []string{"n0", "n2", "n5"}, out.Path)
	assert.True(t, tr.Flags(5).Has(domain.FlagFound))

	tr.ClearRunFlags()
	p, err = BSTSearch(tr, 65)
	require.NoError(t, err)
	out, _, err = Drain(p)
	require.NoError(t, err)
	assert.False(t, out.Found)
	assert.Equal(t, []string{"n0", "n2", "n5"}, out.Path)

	_, err = BSTSearch(viz.NewTree([]int{1, 2}), 1)
	assert.ErrorIs(t, err, domain.ErrMissingPrerequisite)
}

func TestTraverse_Orders(t *testing.T) {
	keys := []int{50, 30, 70, 20, 40, 60, 80}
	cases := map[Order][]string{
		Inorder:   {"20", "30", "40", "50", "60", "70", "80"},
		Preorder:  {"50", "30", "20", "40", "70", "60", "80"},
		Postorder: {"20", "40", "30", "60", "80", "70", "50"},
	}
	for order, want := range cases {
		tr := viz.BuildBST(keys)
		p, err := Traverse(tr, order)
		require.NoError(t, err)
		out, stats, err := Drain(p)
		require.NoError(t, err)
		assert.Equal(t, want, out.Sequence, p.Kind())
		assert.Equal(t, int64(len(keys)), stats.Operations)
		assert.Equal(t, len(keys), tr.Frame().Count(domain.FlagVisited))
	}
}

func TestTraverse_Singleton(t *testing.T) {
	p, err := Traverse(viz.NewTree([]int{5}), Inorder)
	require.NoError(t, err)
	out, stats, err := Drain(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, out.Sequence)
	assert.Zero(t, stats.Operations)
}
