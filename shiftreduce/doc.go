// Package shiftreduce implements left-to-right shift-reduce derivations over
// a chart.
//
// A Grammar supplies lexical entries and combination rules. Moves applies
// the shift, reduce, skip and root moves to derivation stacks, writing
// successor stacks into bounded queues, and decodes finished stacks into
// Parse trees. BeamSearch runs a purely syntactic beam search with the same
// moves.
package shiftreduce
