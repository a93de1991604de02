package chart

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// EntryCost scores an entry before it is added to the chart. The entry
// probability is multiplied by exp(cost); math.Inf(-1) rejects it.
type EntryCost func(e Entry, words []string) float64

// Options configures a Chart.
type Options struct {
	// EntryCost filters entries as they are added. Nil accepts all.
	EntryCost EntryCost
}

type cell struct {
	entries []Entry
	probs   []float64
	ids     []uint32
}

// Chart stores entries for every span of a sentence.
//
// A Chart is owned by one search call and is not safe for concurrent use.
type Chart struct {
	words     []string
	cells     [][]cell
	opts      Options
	nextID    uint32
	// evaluated holds the ids of entries added with Info. It backs Stats
	// and IsEvaluated only; the info itself stays on the entry.
	evaluated *roaring.Bitmap
}

// New creates an empty chart over words.
func New(words []string, optFns ...func(o *Options)) *Chart {
	opts := Options{}
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}

	n := len(words)
	cells := make([][]cell, n)
	for i := range cells {
		cells[i] = make([]cell, n)
	}
	return &Chart{
		words:     words,
		cells:     cells,
		opts:      opts,
		evaluated: roaring.New(),
	}
}

// Words returns the sentence.
func (c *Chart) Words() []string { return c.words }

// Len returns the number of words.
func (c *Chart) Len() int { return len(c.words) }

// Add appends e to the cell of its span. It returns false if the entry cost
// or a zero probability rejected the entry.
func (c *Chart) Add(e Entry, prob float64) (Ref, bool) {
	s := e.Span
	if s.Start < 0 || s.End >= len(c.words) || s.Start > s.End {
		return Ref{}, false
	}
	if c.opts.EntryCost != nil {
		cost := c.opts.EntryCost(e, c.words)
		if math.IsInf(cost, -1) {
			return Ref{}, false
		}
		prob *= math.Exp(cost)
	}
	if prob == 0 {
		return Ref{}, false
	}

	cl := &c.cells[s.Start][s.End]
	id := c.nextID
	c.nextID++
	cl.entries = append(cl.entries, e)
	cl.probs = append(cl.probs, prob)
	cl.ids = append(cl.ids, id)
	if e.Info != nil {
		c.evaluated.Add(id)
	}
	return Ref{Start: s.Start, End: s.End, Index: len(cl.entries) - 1}, true
}

// NumEntries returns the number of entries for a span.
func (c *Chart) NumEntries(start, end int) int {
	return len(c.cells[start][end].entries)
}

// Entry returns the referenced entry. It panics if r is out of range.
func (c *Chart) Entry(r Ref) Entry {
	return c.cells[r.Start][r.End].entries[r.Index]
}

// Prob returns the probability of the referenced entry.
func (c *Chart) Prob(r Ref) float64 {
	return c.cells[r.Start][r.End].probs[r.Index]
}

// IsEvaluated reports whether the referenced entry carries evaluation info.
func (c *Chart) IsEvaluated(r Ref) bool {
	return c.evaluated.Contains(c.cells[r.Start][r.End].ids[r.Index])
}

// Refs returns references to every entry of a span in insertion order.
func (c *Chart) Refs(start, end int) []Ref {
	n := c.NumEntries(start, end)
	refs := make([]Ref, n)
	for i := range refs {
		refs[i] = Ref{Start: start, End: end, Index: i}
	}
	return refs
}

// Stats summarises chart contents.
type Stats struct {
	Entries   int
	Evaluated int
}

// Stats returns the number of entries and of evaluated entries.
func (c *Chart) Stats() Stats {
	return Stats{
		Entries:   int(c.nextID),
		Evaluated: int(c.evaluated.GetCardinality()),
	}
}
