package chart

import "fmt"

// Span is an inclusive range of word positions.
type Span struct {
	Start int
	End   int
}

// Len returns the number of words covered by the span.
func (s Span) Len() int { return s.End - s.Start + 1 }

func (s Span) String() string { return fmt.Sprintf("[%d,%d]", s.Start, s.End) }

// Ref addresses one entry of a chart.
type Ref struct {
	Start int
	End   int
	Index int
}

// Span returns the span of the referenced entry.
func (r Ref) Span() Span { return Span{Start: r.Start, End: r.End} }

func (r Ref) String() string { return fmt.Sprintf("[%d,%d]#%d", r.Start, r.End, r.Index) }

// Unary is a unary rule application recorded on an entry.
type Unary struct {
	// Rule is the grammar's rule value.
	Rule any
	// Syntax is the category produced by the rule.
	Syntax any
}

// Entry is a partial derivation stored in a chart.
//
// Syntax, Lexicon, Combinator, Unary rules and Info are opaque to the chart.
// Entries are values; the With* methods return modified copies.
type Entry struct {
	// Syntax is the category of the entry after any root unary rule.
	Syntax any
	// Terminal is true for lexical entries.
	Terminal bool
	// Lexicon is the lexicon entry of a terminal.
	Lexicon any
	// Combinator is the binary rule of a non-terminal.
	Combinator any

	// Span is the range of words covered, including skipped words.
	Span Span
	// Trigger is the range of words that triggered a terminal.
	Trigger Span

	Left  Ref
	Right Ref

	LeftUnary  *Unary
	RightUnary *Unary
	RootUnary  *Unary

	// Info is the evaluation result attached to the entry, or nil.
	Info any
}

// WithInfo returns a copy of e carrying info.
func (e Entry) WithInfo(info any) Entry {
	e.Info = info
	return e
}

// WithSpan returns a copy of e covering span.
func (e Entry) WithSpan(span Span) Entry {
	e.Span = span
	return e
}

// WithRight returns a copy of e whose right child is r.
func (e Entry) WithRight(r Ref) Entry {
	e.Right = r
	return e
}

// Skipped reports whether a terminal covers more words than its trigger.
func (e Entry) Skipped() bool {
	return e.Terminal && e.Span != e.Trigger
}

// Evaluated reports whether an evaluation result is attached.
func (e Entry) Evaluated() bool { return e.Info != nil }
