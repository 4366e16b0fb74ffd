package registry

import (
	"fmt"
	"math/rand/v2"

	"github.com/aretw0/stepwise/pkg/algo"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/viz"
)

type searchParams struct {
	Target *int `mapstructure:"target"`
}

type sizeParams struct {
	N int `mapstructure:"n"`
}

type knapsackParams struct {
	Items    []algo.Item `mapstructure:"items"`
	Capacity int         `mapstructure:"capacity"`
}

type lcsParams struct {
	A string `mapstructure:"a"`
	B string `mapstructure:"b"`
}

type chainParams struct {
	Dims []int `mapstructure:"dims"`
}

type minimaxParams struct {
	AlphaBeta bool `mapstructure:"alpha_beta"`
}

type keyParams struct {
	Key *int `mapstructure:"key"`
}

func as[T viz.Container](c viz.Container) (T, error) {
	v, ok := c.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: unexpected container %T", domain.ErrFamilyMismatch, c)
	}
	return v, nil
}

func decodeTarget(kind domain.Kind, params map[string]any) (int, error) {
	var p searchParams
	if err := Decode(params, &p); err != nil {
		return 0, err
	}
	if p.Target == nil {
		return 0, fmt.Errorf("%s: %w: target value is not set", kind, domain.ErrMissingPrerequisite)
	}
	return *p.Target, nil
}

func arraySample(sorted bool) func(rng *rand.Rand, n int) (viz.Container, map[string]any) {
	return func(rng *rand.Rand, n int) (viz.Container, map[string]any) {
		values := viz.RandomValues(rng, n)
		if sorted {
			values = viz.SortedValues(rng, n)
		}
		params := map[string]any{}
		if n > 0 {
			params["target"] = values[rng.IntN(n)]
		}
		return viz.NewArray(values), params
	}
}

func gridSample(rng *rand.Rand, n int) (viz.Container, map[string]any) {
	side := 2
	for side*side < n {
		side++
	}
	return viz.RandomGrid(rng, side, side, 0.2), nil
}

func sorter(fn func(*viz.Array) algo.Procedure) BuildFunc {
	return func(c viz.Container, _ map[string]any) (algo.Procedure, error) {
		a, err := as[*viz.Array](c)
		if err != nil {
			return nil, err
		}
		return fn(a), nil
	}
}

func searcher(kind domain.Kind, fn func(*viz.Array, int) (algo.Procedure, error)) BuildFunc {
	return func(c viz.Container, params map[string]any) (algo.Procedure, error) {
		a, err := as[*viz.Array](c)
		if err != nil {
			return nil, err
		}
		target, err := decodeTarget(kind, params)
		if err != nil {
			return nil, err
		}
		return fn(a, target)
	}
}

func traverser(fn func(viz.Topology) (algo.Procedure, error)) BuildFunc {
	return func(c viz.Container, _ map[string]any) (algo.Procedure, error) {
		g, err := as[viz.Topology](c)
		if err != nil {
			return nil, err
		}
		return fn(g)
	}
}

func treeWalker(order algo.Order) BuildFunc {
	return func(c viz.Container, _ map[string]any) (algo.Procedure, error) {
		tr, err := as[*viz.Tree](c)
		if err != nil {
			return nil, err
		}
		return algo.Traverse(tr, order)
	}
}

func treeSample(build bool) func(rng *rand.Rand, n int) (viz.Container, map[string]any) {
	return func(rng *rand.Rand, n int) (viz.Container, map[string]any) {
		keys := viz.RandomValues(rng, n)
		params := map[string]any{}
		if n > 0 {
			params["key"] = keys[rng.IntN(n)]
		}
		if build {
			return viz.BuildBST(keys), params
		}
		return viz.NewTree(keys), params
	}
}

func matrixInput(params map[string]any) (viz.Container, error) {
	var p sizeParams
	if err := Decode(params, &p); err != nil {
		return nil, err
	}
	if p.N < 0 || p.N > 20 {
		return nil, fmt.Errorf("%w: matrix size must be in [0, 20]", domain.ErrInvalidParams)
	}
	m := make([][]int64, p.N)
	for r := range m {
		m[r] = make([]int64, p.N)
		for c := range m[r] {
			m[r][c] = int64(r*p.N + c + 1)
		}
	}
	return viz.NewMatrix(m), nil
}

func matrixOp(fn func(*viz.Table) (algo.Procedure, error)) BuildFunc {
	return func(c viz.Container, _ map[string]any) (algo.Procedure, error) {
		tb, err := as[*viz.Table](c)
		if err != nil {
			return nil, err
		}
		return fn(tb)
	}
}

// Default returns a registry holding every built-in algorithm.
func Default() *Registry {
	r := New()
	for _, e := range builtins() {
		r.Register(e)
	}
	return r
}

func builtins() []Entry {
	return []Entry{
		{
			Kind: domain.KindBubbleSort, Family: domain.FamilyArray,
			Title: "Bubble Sort", Time: "O(n²)", Space: "O(1)",
			Summary: "Repeatedly swaps adjacent out-of-order pairs; the largest remaining value bubbles to the end of each pass.",
			Build:   sorter(algo.BubbleSort), Sample: arraySample(false),
		},
		{
			Kind: domain.KindInsertionSort, Family: domain.FamilyArray,
			Title: "Insertion Sort", Time: "O(n²)", Space: "O(1)",
			Summary: "Grows a sorted prefix by sinking each new element into place.",
			Build:   sorter(algo.InsertionSort), Sample: arraySample(false),
		},
		{
			Kind: domain.KindQuickSort, Family: domain.FamilyArray,
			Title: "Quick Sort", Time: "O(n log n) avg, O(n²) worst", Space: "O(log n)",
			Summary: "Partitions around the last element (Lomuto) and sorts both sides.",
			Build:   sorter(algo.QuickSort), Sample: arraySample(false),
		},
		{
			Kind: domain.KindMergeSort, Family: domain.FamilyArray,
			Title: "Merge Sort", Time: "O(n log n)", Space: "O(n)",
			Summary: "Merges sorted runs of doubling width.",
			Build:   sorter(algo.MergeSort), Sample: arraySample(false),
		},
		{
			Kind: domain.KindLinearSearch, Family: domain.FamilyArray,
			Title: "Linear Search", Time: "O(n)", Space: "O(1)", Requires: []string{"target"},
			Summary: "Probes every index in order until the target is found.",
			Build: searcher(domain.KindLinearSearch, func(a *viz.Array, target int) (algo.Procedure, error) {
				return algo.LinearSearch(a, target), nil
			}),
			Sample: arraySample(false),
		},
		{
			Kind: domain.KindBinarySearch, Family: domain.FamilyArray,
			Title: "Binary Search", Time: "O(log n)", Space: "O(1)", Requires: []string{"target", "sorted"},
			Summary: "Halves the search range around the middle element.",
			Build:   searcher(domain.KindBinarySearch, algo.BinarySearch), Sample: arraySample(true),
		},
		{
			Kind: domain.KindJumpSearch, Family: domain.FamilyArray,
			Title: "Jump Search", Time: "O(√n)", Space: "O(1)", Requires: []string{"target", "sorted"},
			Summary: "Jumps ahead in √n blocks, then scans the block that may hold the target.",
			Build:   searcher(domain.KindJumpSearch, algo.JumpSearch), Sample: arraySample(true),
		},
		{
			Kind: domain.KindInterpolationSearch, Family: domain.FamilyArray,
			Title: "Interpolation Search", Time: "O(log log n) uniform, O(n) worst", Space: "O(1)", Requires: []string{"target", "sorted"},
			Summary: "Estimates the target position from the value range.",
			Build:   searcher(domain.KindInterpolationSearch, algo.InterpolationSearch), Sample: arraySample(true),
		},
		{
			Kind: domain.KindDFS, Family: domain.FamilyGrid, Accepts: []domain.Family{domain.FamilyGrid, domain.FamilyGraph},
			Title: "Depth-First Search", Time: "O(V + E)", Space: "O(V)", Requires: []string{"start"},
			Summary: "Follows one branch as deep as possible before backtracking.",
			Build:   traverser(algo.DFS), Sample: gridSample,
		},
		{
			Kind: domain.KindBFS, Family: domain.FamilyGrid, Accepts: []domain.Family{domain.FamilyGrid, domain.FamilyGraph},
			Title: "Breadth-First Search", Time: "O(V + E)", Space: "O(V)", Requires: []string{"start"},
			Summary: "Explores nodes in order of hop distance from the start.",
			Build:   traverser(algo.BFS), Sample: gridSample,
		},
		{
			Kind: domain.KindDijkstra, Family: domain.FamilyGrid, Accepts: []domain.Family{domain.FamilyGrid, domain.FamilyGraph},
			Title: "Dijkstra", Time: "O((V + E) log V)", Space: "O(V)", Requires: []string{"start", "target"},
			Summary: "Expands the cheapest frontier node first; optimal for non-negative weights.",
			Build:   traverser(algo.Dijkstra), Sample: gridSample,
		},
		{
			Kind: domain.KindAStar, Family: domain.FamilyGrid, Accepts: []domain.Family{domain.FamilyGrid, domain.FamilyGraph},
			Title: "A* Search", Time: "O((V + E) log V)", Space: "O(V)", Requires: []string{"start", "target"},
			Summary: "Dijkstra guided by an admissible Manhattan-distance estimate.",
			Build:   traverser(algo.AStar), Sample: gridSample,
		},
		{
			Kind: domain.KindFibonacci, Family: domain.FamilyTable,
			Title: "Fibonacci", Time: "O(n)", Space: "O(n)", Defaults: map[string]any{"n": 10},
			Summary: "dp[i] = dp[i-1] + dp[i-2] from dp[0]=0, dp[1]=1.",
			Input: func(params map[string]any) (viz.Container, error) {
				var p sizeParams
				if err := Decode(params, &p); err != nil {
					return nil, err
				}
				if p.N < 0 || p.N > algo.MaxFibonacci {
					return nil, fmt.Errorf("%w: n must be in [0, %d]", domain.ErrInvalidParams, algo.MaxFibonacci)
				}
				return algo.FibonacciTable(p.N), nil
			},
			Build: func(c viz.Container, params map[string]any) (algo.Procedure, error) {
				tb, err := as[*viz.Table](c)
				if err != nil {
					return nil, err
				}
				var p sizeParams
				if err := Decode(params, &p); err != nil {
					return nil, err
				}
				return algo.Fibonacci(tb, p.N)
			},
		},
		{
			Kind: domain.KindKnapsack, Family: domain.FamilyTable,
			Title: "0/1 Knapsack", Time: "O(n·W)", Space: "O(n·W)",
			Defaults: map[string]any{
				"capacity": 8,
				"items": []map[string]any{
					{"weight": 2, "value": 3}, {"weight": 3, "value": 4},
					{"weight": 4, "value": 5}, {"weight": 5, "value": 6},
				},
			},
			Summary: "Best value within a weight budget, each item taken at most once.",
			Input: func(params map[string]any) (viz.Container, error) {
				var p knapsackParams
				if err := Decode(params, &p); err != nil {
					return nil, err
				}
				if p.Capacity < 0 || p.Capacity > 200 || len(p.Items) > 50 {
					return nil, fmt.Errorf("%w: capacity must be in [0, 200] with at most 50 items", domain.ErrInvalidParams)
				}
				return algo.KnapsackTable(p.Items, p.Capacity), nil
			},
			Build: func(c viz.Container, params map[string]any) (algo.Procedure, error) {
				tb, err := as[*viz.Table](c)
				if err != nil {
					return nil, err
				}
				var p knapsackParams
				if err := Decode(params, &p); err != nil {
					return nil, err
				}
				return algo.Knapsack(tb, p.Items, p.Capacity)
			},
		},
		{
			Kind: domain.KindLCS, Family: domain.FamilyTable,
			Title: "Longest Common Subsequence", Time: "O(m·n)", Space: "O(m·n)",
			Defaults: map[string]any{"a": "ABCBDAB", "b": "BDCABA"},
			Summary:  "Longest sequence of characters appearing in order in both strings.",
			Input: func(params map[string]any) (viz.Container, error) {
				var p lcsParams
				if err := Decode(params, &p); err != nil {
					return nil, err
				}
				if len(p.A) > 64 || len(p.B) > 64 {
					return nil, fmt.Errorf("%w: strings are limited to 64 characters", domain.ErrInvalidParams)
				}
				return algo.LCSTable(p.A, p.B), nil
			},
			Build: func(c viz.Container, params map[string]any) (algo.Procedure, error) {
				tb, err := as[*viz.Table](c)
				if err != nil {
					return nil, err
				}
				var p lcsParams
				if err := Decode(params, &p); err != nil {
					return nil, err
				}
				return algo.LCS(tb, p.A, p.B)
			},
		},
		{
			Kind: domain.KindMatrixChain, Family: domain.FamilyTable,
			Title: "Matrix Chain Order", Time: "O(n³)", Space: "O(n²)",
			Defaults: map[string]any{"dims": []int{10, 30, 5, 60, 10}},
			Summary:  "Cheapest parenthesization of a chain of matrix products.",
			Input: func(params map[string]any) (viz.Container, error) {
				var p chainParams
				if err := Decode(params, &p); err != nil {
					return nil, err
				}
				if len(p.Dims) < 2 || len(p.Dims) > 30 {
					return nil, fmt.Errorf("%w: need between 2 and 30 dimensions", domain.ErrInvalidParams)
				}
				return algo.MatrixChainTable(p.Dims), nil
			},
			Build: func(c viz.Container, params map[string]any) (algo.Procedure, error) {
				tb, err := as[*viz.Table](c)
				if err != nil {
					return nil, err
				}
				var p chainParams
				if err := Decode(params, &p); err != nil {
					return nil, err
				}
				return algo.MatrixChain(tb, p.Dims)
			},
		},
		{
			Kind: domain.KindBSTInsert, Family: domain.FamilyTree,
			Title: "BST Insert", Time: "O(n log n) avg, O(n²) worst", Space: "O(n)",
			Summary: "Inserts keys one by one, going left for smaller keys.",
			Build: func(c viz.Container, _ map[string]any) (algo.Procedure, error) {
				tr, err := as[*viz.Tree](c)
				if err != nil {
					return nil, err
				}
				return algo.BSTInsert(tr), nil
			},
			Sample: treeSample(false),
		},
		{
			Kind: domain.KindAVLInsert, Family: domain.FamilyTree,
			Title: "AVL Insert", Time: "O(n log n)", Space: "O(n)",
			Summary: "BST insertion that rotates to keep every balance factor in [-1, 1].",
			Build: func(c viz.Container, _ map[string]any) (algo.Procedure, error) {
				tr, err := as[*viz.Tree](c)
				if err != nil {
					return nil, err
				}
				return algo.AVLInsert(tr), nil
			},
			Sample: treeSample(false),
		},
		{
			Kind: domain.KindBSTSearch, Family: domain.FamilyTree,
			Title: "BST Search", Time: "O(h)", Space: "O(1)", Requires: []string{"key"},
			Summary: "Walks from the root toward the key.",
			Build: func(c viz.Container, params map[string]any) (algo.Procedure, error) {
				tr, err := as[*viz.Tree](c)
				if err != nil {
					return nil, err
				}
				var p keyParams
				if err := Decode(params, &p); err != nil {
					return nil, err
				}
				if p.Key == nil {
					return nil, fmt.Errorf("bst-search: %w: key is not set", domain.ErrMissingPrerequisite)
				}
				return algo.BSTSearch(tr, *p.Key)
			},
			Sample: treeSample(true),
		},
		{
			Kind: domain.KindInorder, Family: domain.FamilyTree,
			Title: "Inorder Traversal", Time: "O(n)", Space: "O(h)",
			Summary: "Left subtree, node, right subtree: yields keys in sorted order.",
			Build:   treeWalker(algo.Inorder), Sample: treeSample(true),
		},
		{
			Kind: domain.KindPreorder, Family: domain.FamilyTree,
			Title: "Preorder Traversal", Time: "O(n)", Space: "O(h)",
			Summary: "Node, left subtree, right subtree.",
			Build:   treeWalker(algo.Preorder), Sample: treeSample(true),
		},
		{
			Kind: domain.KindPostorder, Family: domain.FamilyTree,
			Title: "Postorder Traversal", Time: "O(n)", Space: "O(h)",
			Summary: "Left subtree, right subtree, node.",
			Build:   treeWalker(algo.Postorder), Sample: treeSample(true),
		},
		{
			Kind: domain.KindMatrixRotate, Family: domain.FamilyTable,
			Title: "Matrix Rotate", Time: "O(n²)", Space: "O(n²)", Defaults: map[string]any{"n": 4},
			Summary: "Rotates a square matrix 90° clockwise.",
			Input:   matrixInput, Build: matrixOp(algo.RotateMatrix),
		},
		{
			Kind: domain.KindMatrixTranspose, Family: domain.FamilyTable,
			Title: "Matrix Transpose", Time: "O(n²)", Space: "O(1)", Defaults: map[string]any{"n": 4},
			Summary: "Mirrors a square matrix across its main diagonal.",
			Input:   matrixInput, Build: matrixOp(algo.TransposeMatrix),
		},
		{
			Kind: domain.KindMatrixMultiply, Family: domain.FamilyTable,
			Title: "Matrix Multiply", Time: "O(n³)", Space: "O(n²)", Defaults: map[string]any{"n": 3},
			Summary: "Replaces a square matrix with its product with itself.",
			Input:   matrixInput, Build: matrixOp(algo.MultiplyMatrix),
		},
		{
			Kind: domain.KindFactorial, Family: domain.FamilyTable,
			Title: "Factorial", Time: "O(n)", Space: "O(n)", Defaults: map[string]any{"n": 10},
			Summary: "f[i] = f[i-1]·i from f[0] = 1.",
			Input: func(params map[string]any) (viz.Container, error) {
				var p sizeParams
				if err := Decode(params, &p); err != nil {
					return nil, err
				}
				if p.N < 0 || p.N > algo.MaxFactorial {
					return nil, fmt.Errorf("%w: n must be in [0, %d]", domain.ErrInvalidParams, algo.MaxFactorial)
				}
				return algo.FactorialTable(p.N), nil
			},
			Build: func(c viz.Container, params map[string]any) (algo.Procedure, error) {
				tb, err := as[*viz.Table](c)
				if err != nil {
					return nil, err
				}
				var p sizeParams
				if err := Decode(params, &p); err != nil {
					return nil, err
				}
				return algo.Factorial(tb, p.N)
			},
		},
		{
			Kind: domain.KindArraySum, Family: domain.FamilyArray,
			Title: "Array Sum", Time: "O(n)", Space: "O(1)",
			Summary: "Accumulates values left to right.",
			Build:   sorter(algo.ArraySum), Sample: arraySample(false),
		},
		{
			Kind: domain.KindGCD, Family: domain.FamilyArray,
			Title: "Greatest Common Divisor", Time: "O(log min(a, b))", Space: "O(1)",
			Defaults: map[string]any{"a": 252, "b": 105},
			Summary:  "Euclid: replace (a, b) with (b, a mod b) until b is zero.",
			Input: func(params map[string]any) (viz.Container, error) {
				var p struct {
					A int `mapstructure:"a"`
					B int `mapstructure:"b"`
				}
				if err := Decode(params, &p); err != nil {
					return nil, err
				}
				return viz.NewArray([]int{p.A, p.B}), nil
			},
			Build: func(c viz.Container, _ map[string]any) (algo.Procedure, error) {
				a, err := as[*viz.Array](c)
				if err != nil {
					return nil, err
				}
				return algo.GCD(a)
			},
		},
		{
			Kind: domain.KindMinimax, Family: domain.FamilyBoard,
			Title: "Minimax (Tic-Tac-Toe)", Time: "O(b^d)", Space: "O(d)",
			Defaults: map[string]any{"alpha_beta": true, "board": "....X...."},
			Summary:  "Computer (O) picks the move maximizing its worst-case score.",
			Input: func(params map[string]any) (viz.Container, error) {
				var p struct {
					Board string `mapstructure:"board"`
				}
				if err := Decode(params, &p); err != nil {
					return nil, err
				}
				cells, err := viz.ParseCells(p.Board)
				if err != nil {
					return nil, err
				}
				return viz.NewBoard(cells), nil
			},
			Build: func(c viz.Container, params map[string]any) (algo.Procedure, error) {
				b, err := as[*viz.Board](c)
				if err != nil {
					return nil, err
				}
				var p minimaxParams
				if err := Decode(params, &p); err != nil {
					return nil, err
				}
				return algo.Minimax(b, p.AlphaBeta)
			},
		},
		{
			Kind: domain.KindGenetic, Family: domain.FamilyPopulation,
			Title: "Genetic Search", Time: "O(g·p·n)", Space: "O(p·n)",
			Defaults: map[string]any{"generations": 50, "mutation_rate": 0.1, "seed": 1},
			Summary:  "Evolves gene vectors toward higher mean by selection, crossover and mutation.",
			Build: func(c viz.Container, params map[string]any) (algo.Procedure, error) {
				p, err := as[*viz.Population](c)
				if err != nil {
					return nil, err
				}
				gp := algo.DefaultGeneticParams()
				if err := Decode(params, &gp); err != nil {
					return nil, err
				}
				return algo.Genetic(p, gp)
			},
			Sample: func(rng *rand.Rand, n int) (viz.Container, map[string]any) {
				return viz.NewPopulation(rng, n, viz.DefaultGenes), map[string]any{"seed": rng.Uint64()}
			},
		},
	}
}
