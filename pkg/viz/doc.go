// Package viz holds the visualization state stores driven by algorithms.
//
// Every family (array, grid, graph, tree, table, board, population) is built
// on the generic Store, which pairs logical values with display flags and
// hands out immutable snapshots. A run freezes its container so structural
// edits are rejected until the run ends.
package viz
