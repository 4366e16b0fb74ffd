package algo

import (
	"testing"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/viz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFibonacci(t *testing.T) {
	tb := FibonacciTable(10)
	p, err := Fibonacci(tb, 10)
	require.NoError(t, err)

	var steps int
	out, err := p.Run(func(s Step) bool {
		steps++
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, 9, steps, "bases are seeded without steps")
	assert.Equal(t, 55.0, out.Value)
	assert.Equal(t, int64(34), tb.Cell(0, 9))
	assert.Equal(t, 11, tb.Frame().Count(domain.FlagCalculated))
}

func TestFibonacci_Bounds(t *testing.T) {
	_, err := Fibonacci(FibonacciTable(93), 93)
	assert.ErrorIs(t, err, domain.ErrInvalidParams)
	_, err = Fibonacci(FibonacciTable(3), 5)
	assert.ErrorIs(t, err, domain.ErrInvalidParams)

	p, err := Fibonacci(FibonacciTable(0), 0)
	require.NoError(t, err)
	out, stats, err := Drain(p)
	require.NoError(t, err)
	assert.Zero(t, out.Value)
	assert.Zero(t, stats.Operations)

	tb := FibonacciTable(MaxFibonacci)
	p, err = Fibonacci(tb, MaxFibonacci)
	require.NoError(t, err)
	out, _, err = Drain(p)
	require.NoError(t, err)
	assert.Equal(t, int64(7540113804746346429), tb.Cell(0, MaxFibonacci))
	assert.True(t, out.Found)
}

func TestKnapsack(t *testing.T) {
	items := []Item{{1, 1}, {3, 4}, {4, 5}, {5, 7}}
	tb := KnapsackTable(items, 7)
	p, err := Knapsack(tb, items, 7)
	require.NoError(t, err)
	out, stats, err := Drain(p)
	require.NoError(t, err)

	assert.Equal(t, 9.0, out.Value)
	assert.Equal(t, []string{"3", "2"}, out.Sequence)
	assert.Equal(t, int64(4*8), stats.Operations)
	assert.Equal(t, 2, tb.Frame().Count(domain.FlagPath))
	assert.Equal(t, "#2 w=3 v=4", tb.Frame().Headers["rows"][2])

	_, err = Knapsack(tb, items, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidParams)
}

func TestLCS(t *testing.T) {
	tb := LCSTable("ABCBDAB", "BDCABA")
	p, err := LCS(tb, "ABCBDAB", "BDCABA")
	require.NoError(t, err)
	out, stats, err := Drain(p)
	require.NoError(t, err)

	assert.Equal(t, "BCBA", out.Detail)
	assert.Equal(t, 4.0, out.Value)
	assert.Equal(t, int64(42), stats.Operations)
	assert.Equal(t, 4, tb.Frame().Count(domain.FlagPath))

	tb = LCSTable("abc", "xyz")
	p, err = LCS(tb, "abc", "xyz")
	require.NoError(t, err)
	out, _, err = Drain(p)
	require.NoError(t, err)
	assert.False(t, out.Found)
	assert.Empty(t, out.Detail)
}

func TestMatrixChain(t *testing.T) {
	dims := []int{10, 30, 5, 60, 10}
	tb := MatrixChainTable(dims)
	p, err := MatrixChain(tb, dims)
	require.NoError(t, err)
	out, stats, err := Drain(p)
	require.NoError(t, err)

	assert.Equal(t, 5000.0, out.Value)
	assert.Equal(t, "((A1A2)(A3A4))", out.Detail)
	assert.Equal(t, int64(6), stats.Operations)
	assert.Equal(t, int64(4500), tb.Cell(0, 2))

	_, err = MatrixChain(viz.NewTable(1, 1), []int{3, 0})
	assert.ErrorIs(t, err, domain.ErrInvalidParams)
	_, err = MatrixChain(viz.NewTable(1, 1), []int{3})
	assert.ErrorIs(t, err, domain.ErrInvalidParams)
}

func TestFill_ProcessingVisibleDuringStep(t *testing.T) {
	tb := FibonacciTable(4)
	p, err := Fibonacci(tb, 4)
	require.NoError(t, err)
	_, err = p.Run(func(s Step) bool {
		assert.Equal(t, 1, tb.Frame().Count(domain.FlagProcessing), s.Label)
		return true
	})
	require.NoError(t, err)
	assert.Zero(t, tb.Frame().Count(domain.FlagProcessing))
}
