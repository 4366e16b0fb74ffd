/*
Package algo implements the built-in stepwise algorithms.

Every algorithm is a Procedure: it mutates a viz container and reports each
visible step through a Yield callback. Yield returning false stops the
procedure at that step boundary with ErrHalted. Recursive algorithms
(quick sort, merge sort, DFS, tree walks, minimax) keep explicit work stacks
so that every logical recursive call is itself a yield point.

Constructors validate their prerequisites and never touch the container;
mutation starts with Run.
*/
package algo
