// Package search implements grounded semantic parsing as a beam search over
// joint syntactic and semantic states.
//
// A State is either parsing, waiting for the next shift-reduce move, or
// evaluating, holding a suspended evaluation of the logical form of its top
// stack entry. Two strategies are provided:
//
//   - Interleaved alternates parser moves and evaluation steps inside a
//     single beam. Finished evaluations are attached to the chart so that
//     larger derivations reuse them.
//   - Pipelined completes syntactic parsing first and then evaluates the
//     most probable distinct logical forms.
//
// A Cost hook scores every candidate before it is queued; math.Inf(-1)
// discards the candidate.
package search
