package domain

// Family names the shape of container an algorithm operates on.
type Family string

const (
	FamilyArray      Family = "array"
	FamilyGrid       Family = "grid"
	FamilyGraph      Family = "graph"
	FamilyTree       Family = "tree"
	FamilyTable      Family = "table"
	FamilyBoard      Family = "board"
	FamilyPopulation Family = "population"
)

// Kind identifies one built-in algorithm.
type Kind string

const (
	KindBubbleSort    Kind = "bubble-sort"
	KindInsertionSort Kind = "insertion-sort"
	KindQuickSort     Kind = "quick-sort"
	KindMergeSort     Kind = "merge-sort"

	KindLinearSearch        Kind = "linear-search"
	KindBinarySearch        Kind = "binary-search"
	KindJumpSearch          Kind = "jump-search"
	KindInterpolationSearch Kind = "interpolation-search"

	KindDFS      Kind = "dfs"
	KindBFS      Kind = "bfs"
	KindDijkstra Kind = "dijkstra"
	KindAStar    Kind = "astar"

	KindFibonacci   Kind = "fibonacci"
	KindKnapsack    Kind = "knapsack"
	KindLCS         Kind = "lcs"
	KindMatrixChain Kind = "matrix-chain"

	KindBSTInsert Kind = "bst-insert"
	KindAVLInsert Kind = "avl-insert"
	KindBSTSearch Kind = "bst-search"
	KindInorder   Kind = "inorder"
	KindPreorder  Kind = "preorder"
	KindPostorder Kind = "postorder"

	KindMatrixRotate    Kind = "matrix-rotate"
	KindMatrixTranspose Kind = "matrix-transpose"
	KindMatrixMultiply  Kind = "matrix-multiply"

	KindFactorial Kind = "factorial"
	KindArraySum  Kind = "array-sum"
	KindGCD       Kind = "gcd"

	KindMinimax Kind = "minimax"
	KindGenetic Kind = "genetic"
)

// Outcome is what a completed algorithm reports. Exhaustion (a search miss,
// an unreachable target) is a normal outcome with Found set to false.
type Outcome struct {
	Found    bool     `json:"found"`
	Index    int      `json:"index"`
	Value    float64  `json:"value,omitempty"`
	Cost     float64  `json:"cost,omitempty"`
	Path     []string `json:"path,omitempty"`
	Sequence []string `json:"sequence,omitempty"`
	Detail   string   `json:"detail,omitempty"`
}

// NotFound is the outcome of an exhausted search.
func NotFound() Outcome { return Outcome{Index: -1} }
