package domain

import "time"

// Stats accumulates progress counters. It has value semantics: every update
// returns a new record.
type Stats struct {
	Operations     int64         `json:"operations"`
	Comparisons    int64         `json:"comparisons"`
	Mutations      int64         `json:"mutations"`
	Elapsed        time.Duration `json:"elapsed_ns"`
	MemoryEstimate uint64        `json:"memory_estimate"`
}

// Tally is the contribution of a single step.
type Tally struct {
	Ops         int
	Comparisons int
	Mutations   int
	// AuxBytes is the auxiliary memory the algorithm holds at this step.
	AuxBytes uint64
}

// Add returns s with the step contribution merged in. The memory estimate
// tracks the peak.
func (s Stats) Add(t Tally) Stats {
	s.Operations += int64(t.Ops)
	s.Comparisons += int64(t.Comparisons)
	s.Mutations += int64(t.Mutations)
	if t.AuxBytes > s.MemoryEstimate {
		s.MemoryEstimate = t.AuxBytes
	}
	return s
}

// Merge combines two records, summing counters and keeping the larger
// memory estimate.
func (s Stats) Merge(o Stats) Stats {
	s.Operations += o.Operations
	s.Comparisons += o.Comparisons
	s.Mutations += o.Mutations
	s.Elapsed += o.Elapsed
	if o.MemoryEstimate > s.MemoryEstimate {
		s.MemoryEstimate = o.MemoryEstimate
	}
	return s
}

// WithElapsed returns s with the elapsed time replaced.
func (s Stats) WithElapsed(d time.Duration) Stats {
	s.Elapsed = d
	return s
}
