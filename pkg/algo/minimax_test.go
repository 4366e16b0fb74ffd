package algo

import (
	"testing"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/viz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func board(t *testing.T, s string) *viz.Board {
	t.Helper()
	c, err := viz.ParseCells(s)
	require.NoError(t, err)
	return viz.NewBoard(c)
}

func TestMinimax_CenterGetsCornerReply(t *testing.T) {
	for _, pruning := range []bool{false, true} {
		b := board(t, "....X....")
		p, err := Minimax(b, pruning)
		require.NoError(t, err)
		out, _, err := Drain(p)
		require.NoError(t, err)

		assert.Contains(t, []int{0, 2, 6, 8}, out.Index)
		assert.Equal(t, 0.0, out.Value, "perfect play draws")
		assert.Equal(t, viz.O, b.Cells()[out.Index])
		assert.True(t, b.Flags(out.Index).Has(domain.FlagFound))
		assert.Zero(t, b.Frame().Count(domain.FlagComparing))
	}
}

func TestMinimax_PruningKeepsChoiceAndSavesWork(t *testing.T) {
	positions := []string{".........", "....X....", "X........", "X...O...X", ".X.......", "XO.......", "X.O.X...."}
	for _, pos := range positions {
		run := func(pruning bool) (domain.Outcome, domain.Stats) {
			p, err := Minimax(board(t, pos), pruning)
			require.NoError(t, err)
			out, stats, err := Drain(p)
			require.NoError(t, err)
			return out, stats
		}
		plain, plainStats := run(false)
		pruned, prunedStats := run(true)
		assert.Equal(t, plain.Index, pruned.Index, pos)
		assert.Equal(t, plain.Value, pruned.Value, pos)
		assert.LessOrEqual(t, prunedStats.Operations, plainStats.Operations, pos)
		if pos == "........." {
			assert.Less(t, prunedStats.Operations, plainStats.Operations/4)
		}
	}
}

func TestMinimax_TakesImmediateWin(t *testing.T) {
	b := board(t, "XX.OO....")
	p, err := Minimax(b, true)
	require.NoError(t, err)
	out, _, err := Drain(p)
	require.NoError(t, err)
	assert.Equal(t, 5, out.Index)
	assert.Equal(t, 10.0, out.Value)
	assert.Equal(t, "row 1 col 2", out.Detail)
}

func TestMinimax_BlocksThreat(t *testing.T) {
	b := board(t, "XX..O....")
	p, err := Minimax(b, true)
	require.NoError(t, err)
	out, _, err := Drain(p)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Index)
}

func TestMinimax_GameOver(t *testing.T) {
	for _, pos := range []string{"XXXOO....", "XOXXOOOXX"} {
		_, err := Minimax(board(t, pos), true)
		assert.ErrorIs(t, err, domain.ErrMissingPrerequisite, pos)
	}
}

// TestMinimax_NeverLoses plays every human strategy against the computer,
// with either side moving first.
func TestMinimax_NeverLoses(t *testing.T) {
	if testing.Short() {
		t.Skip("exhaustive game tree")
	}
	seen := map[viz.Cells]bool{}
	var play func(c viz.Cells, human bool)
	play = func(c viz.Cells, human bool) {
		if seen[c] {
			return
		}
		seen[c] = true
		if w := c.Winner(); w != viz.Empty || c.Full() {
			require.NotEqual(t, Human, w, "human won at %s", c)
			return
		}
		if human {
			for i := range c {
				if c[i] == viz.Empty {
					next := c
					next[i] = Human
					play(next, false)
				}
			}
			return
		}
		b := viz.NewBoard(c)
		p, err := Minimax(b, true)
		require.NoError(t, err)
		_, _, err = Drain(p)
		require.NoError(t, err)
		play(b.Cells(), true)
	}
	play(viz.Cells{}, true)
	play(viz.Cells{}, false)
}

func TestMinimax_Halts(t *testing.T) {
	p, err := Minimax(board(t, "........."), true)
	require.NoError(t, err)
	n := 0
	_, err = p.Run(func(Step) bool {
		n++
		return n < 5
	})
	assert.ErrorIs(t, err, ErrHalted)
	assert.Equal(t, 5, n)
}
