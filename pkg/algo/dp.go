package algo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/viz"
)

// MaxFibonacci keeps dp[n] within int64.
const MaxFibonacci = 92

// fill computes one cell as a step: processing while the step is visible,
// calculated afterwards.
func fill(t *tracker, tb *viz.Table, r, c int, v int64, comparisons int) error {
	tb.MarkCell(r, c, domain.Mark(domain.FlagProcessing))
	tb.SetCell(r, c, v)
	err := t.emit(fmt.Sprintf("dp[%d][%d] = %d", r, c, v), domain.Tally{Ops: 1, Comparisons: comparisons, Mutations: 1})
	tb.MarkCell(r, c, domain.FlagDelta{Set: domain.FlagCalculated, Clear: domain.FlagProcessing})
	return err
}

// seed sets a base cell without a step.
func seed(tb *viz.Table, r, c int, v int64) {
	tb.SetCell(r, c, v)
	tb.MarkCell(r, c, domain.Mark(domain.FlagCalculated))
}

func shapeError(kind domain.Kind, tb *viz.Table, rows, cols int) error {
	if tb.Rows() != rows || tb.Cols() != cols {
		return fmt.Errorf("%s: %w: table is %dx%d, want %dx%d", kind, domain.ErrInvalidParams, tb.Rows(), tb.Cols(), rows, cols)
	}
	return nil
}

// FibonacciTable shapes the table for n.
func FibonacciTable(n int) *viz.Table { return viz.NewTable(1, n+1) }

// Fibonacci fills dp[i] = dp[i-1] + dp[i-2] from the bases dp[0]=0, dp[1]=1.
func Fibonacci(tb *viz.Table, n int) (Procedure, error) {
	if n < 0 || n > MaxFibonacci {
		return nil, fmt.Errorf("fibonacci: %w: n must be in [0, %d]", domain.ErrInvalidParams, MaxFibonacci)
	}
	if err := shapeError(domain.KindFibonacci, tb, 1, n+1); err != nil {
		return nil, err
	}
	return newProc(domain.KindFibonacci, func(t *tracker) (domain.Outcome, error) {
		seed(tb, 0, 0, 0)
		if n == 0 {
			return domain.Outcome{Found: true, Index: 0}, nil
		}
		seed(tb, 0, 1, 1)
		t.aux = uint64(n+1) * wordBytes
		for i := 2; i <= n; i++ {
			if err := fill(t, tb, 0, i, tb.Cell(0, i-1)+tb.Cell(0, i-2), 0); err != nil {
				return domain.Outcome{}, err
			}
		}
		return domain.Outcome{Found: true, Index: n, Value: float64(tb.Cell(0, n))}, nil
	}), nil
}

// Item is a knapsack item.
type Item struct {
	Weight int `mapstructure:"weight" json:"weight"`
	Value  int `mapstructure:"value" json:"value"`
}

// KnapsackTable shapes the table for the items and capacity.
func KnapsackTable(items []Item, capacity int) *viz.Table {
	tb := viz.NewTable(len(items)+1, capacity+1)
	rows := []string{"-"}
	for i, it := range items {
		rows = append(rows, fmt.Sprintf("#%d w=%d v=%d", i+1, it.Weight, it.Value))
	}
	cols := make([]string, capacity+1)
	for w := range cols {
		cols[w] = strconv.Itoa(w)
	}
	tb.SetHeaders(rows, cols)
	return tb
}

// Knapsack fills the 0/1 knapsack table, then backtracks the chosen items.
func Knapsack(tb *viz.Table, items []Item, capacity int) (Procedure, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("knapsack: %w: negative capacity", domain.ErrInvalidParams)
	}
	for i, it := range items {
		if it.Weight < 0 || it.Value < 0 {
			return nil, fmt.Errorf("knapsack: %w: item %d has negative weight or value", domain.ErrInvalidParams, i+1)
		}
	}
	if err := shapeError(domain.KindKnapsack, tb, len(items)+1, capacity+1); err != nil {
		return nil, err
	}
	return newProc(domain.KindKnapsack, func(t *tracker) (domain.Outcome, error) {
		for w := 0; w <= capacity; w++ {
			seed(tb, 0, w, 0)
		}
		t.aux = uint64(tb.Rows()*tb.Cols()) * wordBytes
		for i := 1; i <= len(items); i++ {
			it := items[i-1]
			for w := 0; w <= capacity; w++ {
				best := tb.Cell(i-1, w)
				cmp := 0
				if it.Weight <= w {
					cmp = 1
					best = max(best, int64(it.Value)+tb.Cell(i-1, w-it.Weight))
				}
				if err := fill(t, tb, i, w, best, cmp); err != nil {
					return domain.Outcome{}, err
				}
			}
		}

		var chosen []string
		w := capacity
		for i := len(items); i > 0; i-- {
			if tb.Cell(i, w) != tb.Cell(i-1, w) {
				tb.MarkCell(i, w, domain.Mark(domain.FlagPath))
				chosen = append(chosen, strconv.Itoa(i))
				w -= items[i-1].Weight
			}
		}
		return domain.Outcome{
			Found:    true,
			Index:    len(chosen),
			Value:    float64(tb.Cell(len(items), capacity)),
			Sequence: chosen,
		}, nil
	}), nil
}

// LCSTable shapes the table for two strings.
func LCSTable(a, b string) *viz.Table {
	ra, rb := []rune(a), []rune(b)
	tb := viz.NewTable(len(ra)+1, len(rb)+1)
	rows := []string{"-"}
	for _, r := range ra {
		rows = append(rows, string(r))
	}
	cols := []string{"-"}
	for _, r := range rb {
		cols = append(cols, string(r))
	}
	tb.SetHeaders(rows, cols)
	return tb
}

// LCS fills the longest-common-subsequence table and backtracks the
// subsequence, marking the cells on the backtrack path.
func LCS(tb *viz.Table, a, b string) (Procedure, error) {
	ra, rb := []rune(a), []rune(b)
	if err := shapeError(domain.KindLCS, tb, len(ra)+1, len(rb)+1); err != nil {
		return nil, err
	}
	return newProc(domain.KindLCS, func(t *tracker) (domain.Outcome, error) {
		for i := 0; i <= len(ra); i++ {
			seed(tb, i, 0, 0)
		}
		for j := 1; j <= len(rb); j++ {
			seed(tb, 0, j, 0)
		}
		t.aux = uint64(tb.Rows()*tb.Cols()) * wordBytes
		for i := 1; i <= len(ra); i++ {
			for j := 1; j <= len(rb); j++ {
				var v int64
				if ra[i-1] == rb[j-1] {
					v = tb.Cell(i-1, j-1) + 1
				} else {
					v = max(tb.Cell(i-1, j), tb.Cell(i, j-1))
				}
				if err := fill(t, tb, i, j, v, 1); err != nil {
					return domain.Outcome{}, err
				}
			}
		}

		var out []rune
		i, j := len(ra), len(rb)
		for i > 0 && j > 0 {
			switch {
			case ra[i-1] == rb[j-1]:
				tb.MarkCell(i, j, domain.Mark(domain.FlagPath))
				out = append(out, ra[i-1])
				i--
				j--
			case tb.Cell(i-1, j) >= tb.Cell(i, j-1):
				i--
			default:
				j--
			}
		}
		for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
			out[l], out[r] = out[r], out[l]
		}
		return domain.Outcome{
			Found:  len(out) > 0,
			Index:  len(out),
			Value:  float64(len(out)),
			Detail: string(out),
		}, nil
	}), nil
}

// MatrixChainTable shapes the table for a dimension list.
func MatrixChainTable(dims []int) *viz.Table {
	n := max(len(dims)-1, 0)
	tb := viz.NewTable(n, n)
	heads := make([]string, n)
	for i := range heads {
		heads[i] = fmt.Sprintf("A%d", i+1)
	}
	tb.SetHeaders(heads, heads)
	return tb
}

// MatrixChain fills dp[i][j] = min over k of dp[i][k]+dp[k+1][j]+d[i]d[k+1]d[j+1]
// by increasing chain length and reports the optimal parenthesization.
func MatrixChain(tb *viz.Table, dims []int) (Procedure, error) {
	if len(dims) < 2 {
		return nil, fmt.Errorf("matrix-chain: %w: need at least two dimensions", domain.ErrInvalidParams)
	}
	for _, d := range dims {
		if d <= 0 {
			return nil, fmt.Errorf("matrix-chain: %w: dimensions must be positive", domain.ErrInvalidParams)
		}
	}
	n := len(dims) - 1
	if err := shapeError(domain.KindMatrixChain, tb, n, n); err != nil {
		return nil, err
	}
	return newProc(domain.KindMatrixChain, func(t *tracker) (domain.Outcome, error) {
		split := make([][]int, n)
		for i := range split {
			split[i] = make([]int, n)
			seed(tb, i, i, 0)
		}
		t.aux = uint64(2*n*n) * wordBytes
		for length := 2; length <= n; length++ {
			for i := 0; i+length-1 < n; i++ {
				j := i + length - 1
				best := int64(-1)
				for k := i; k < j; k++ {
					cost := tb.Cell(i, k) + tb.Cell(k+1, j) + int64(dims[i]*dims[k+1]*dims[j+1])
					if best < 0 || cost < best {
						best, split[i][j] = cost, k
					}
				}
				if err := fill(t, tb, i, j, best, j-i); err != nil {
					return domain.Outcome{}, err
				}
			}
		}
		var b strings.Builder
		parenthesize(&b, split, 0, n-1)
		return domain.Outcome{Found: true, Index: n - 1, Value: float64(tb.Cell(0, n-1)), Detail: b.String()}, nil
	}), nil
}

func parenthesize(b *strings.Builder, split [][]int, i, j int) {
	if i == j {
		fmt.Fprintf(b, "A%d", i+1)
		return
	}
	b.WriteByte('(')
	parenthesize(b, split, i, split[i][j])
	parenthesize(b, split, split[i][j]+1, j)
	b.WriteByte(')')
}
