/*
Package domain contains the core models shared by every part of stepwise.

It defines the vocabulary of a visualized run: display flags carried by each
element, the Runner lifecycle (RunState and RunStatus), the Stats accumulator,
algorithm kinds and families, the immutable Frame handed to presentation
layers, and the error taxonomy. This package is kept pure and free of I/O.

# Key Entities

  - Flag / FlagDelta: per-element display flags and the merge protocol.
  - RunState: the Runner's own lifecycle status, distinct from algorithm progress.
  - Stats: counters merged after each step with value semantics.
  - Frame: a deep copy of a container, safe to read while a run continues.
  - Outcome: the result reported by a completed algorithm.
*/
package domain
