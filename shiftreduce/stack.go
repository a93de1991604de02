package shiftreduce

import (
	"fmt"

	"github.com/jayantk/jklol-sub002/chart"
)

// Stack is an immutable node of a shift-reduce derivation stack. The top of
// the stack is the receiver; Previous links to the rest.
type Stack struct {
	// Ref addresses the top entry in the chart.
	Ref chart.Ref
	// Entry is the top entry.
	Entry chart.Entry
	// EntryProb is the chart probability of Entry.
	EntryProb float64
	// TotalProb is the product of every entry probability on the stack.
	TotalProb float64
	// Size is the number of entries on the stack.
	Size int
	// IncludesRoot is set once the root probability has been multiplied in.
	IncludesRoot bool
	// Previous is the stack below the top entry. Nil for the empty stack.
	Previous *Stack
}

// Empty returns the stack with no entries.
func Empty() *Stack {
	return &Stack{
		Ref:       chart.Ref{Start: -1, End: -1, Index: -1},
		TotalProb: 1,
	}
}

// Push returns a new stack with the given entry on top of s.
func (s *Stack) Push(ref chart.Ref, entry chart.Entry, prob float64, includesRoot bool) *Stack {
	return &Stack{
		Ref:          ref,
		Entry:        entry,
		EntryProb:    prob,
		TotalProb:    s.TotalProb * prob,
		Size:         s.Size + 1,
		IncludesRoot: includesRoot,
		Previous:     s,
	}
}

// IsEmpty reports whether s has no entries.
func (s *Stack) IsEmpty() bool { return s.Size == 0 }

// Start returns the first word position covered by the top entry.
func (s *Stack) Start() int { return s.Ref.Start }

// End returns the last word position covered by the top entry, or -1 for
// the empty stack.
func (s *Stack) End() int { return s.Ref.End }

func (s *Stack) String() string {
	if s.IsEmpty() {
		return "[]"
	}
	return fmt.Sprintf("%v %v:%v (%.4g)", s.Previous, s.Ref, s.Entry.Syntax, s.EntryProb)
}

// SizeKey returns a queue key function that segregates stacks by size.
// Stacks of maxSize or more map to -1 and are discarded.
func SizeKey(maxSize int) func(*Stack) int {
	return func(s *Stack) int {
		if s.Size < maxSize {
			return s.Size
		}
		return -1
	}
}
