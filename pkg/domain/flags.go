package domain

import (
	"encoding/json"
	"strings"
)

// Flag is a bit set of display flags attached to one element.
type Flag uint16

const (
	FlagVisited Flag = 1 << iota
	FlagProcessing
	FlagComparing
	FlagSorted
	FlagFound
	FlagPath
	FlagWall
	FlagStart
	FlagTarget
	FlagCalculated
)

// StructuralFlags describe the container itself and survive between runs.
const StructuralFlags = FlagWall | FlagStart | FlagTarget

// RunFlags are produced by a run and cleared before the next one.
const RunFlags = FlagVisited | FlagProcessing | FlagComparing | FlagSorted |
	FlagFound | FlagPath | FlagCalculated

var flagNames = []struct {
	flag Flag
	name string
}{
	{FlagVisited, "visited"},
	{FlagProcessing, "processing"},
	{FlagComparing, "comparing"},
	{FlagSorted, "sorted"},
	{FlagFound, "found"},
	{FlagPath, "path"},
	{FlagWall, "wall"},
	{FlagStart, "start"},
	{FlagTarget, "target"},
	{FlagCalculated, "calculated"},
}

// Has reports whether every bit of o is set in f.
func (f Flag) Has(o Flag) bool { return f&o == o }

// Names returns the flag names in declaration order.
func (f Flag) Names() []string {
	names := make([]string, 0, 4)
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	return names
}

func (f Flag) String() string {
	if f == 0 {
		return "none"
	}
	return strings.Join(f.Names(), "|")
}

// ParseFlag resolves a single flag name.
func ParseFlag(name string) (Flag, bool) {
	for _, fn := range flagNames {
		if fn.name == name {
			return fn.flag, true
		}
	}
	return 0, false
}

func (f Flag) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Names())
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*f = 0
	for _, n := range names {
		if fl, ok := ParseFlag(n); ok {
			*f |= fl
		}
	}
	return nil
}

// FlagDelta is a merge instruction: bits in Clear are removed, then bits in
// Set are added. Bits mentioned in neither are left alone.
type FlagDelta struct {
	Set   Flag
	Clear Flag
}

// Mark builds a delta that sets the given flags.
func Mark(flags ...Flag) FlagDelta {
	var d FlagDelta
	for _, f := range flags {
		d.Set |= f
	}
	return d
}

// Unmark builds a delta that clears the given flags.
func Unmark(flags ...Flag) FlagDelta {
	var d FlagDelta
	for _, f := range flags {
		d.Clear |= f
	}
	return d
}

// Then combines two deltas, applying d first and next second.
func (d FlagDelta) Then(next FlagDelta) FlagDelta {
	return FlagDelta{
		Set:   (d.Set &^ next.Clear) | next.Set,
		Clear: (d.Clear &^ next.Set) | next.Clear,
	}
}

// Apply merges the delta onto cur. Found always implies visited, and a
// sorted element stays sorted.
func (d FlagDelta) Apply(cur Flag) Flag {
	out := (cur &^ d.Clear) | d.Set
	if cur&FlagSorted != 0 {
		out |= FlagSorted
	}
	if out&FlagFound != 0 {
		out |= FlagVisited
	}
	return out
}
