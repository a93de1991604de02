// Package chart implements the append-only arena of partial derivations
// built over a sentence.
//
// Entries are grouped by the span of words they cover and addressed by a
// Ref, the (start, end, index) triple. Entries are never removed or
// rewritten: attaching an evaluation result to an entry produces a new
// entry with its own index in the same span.
package chart
