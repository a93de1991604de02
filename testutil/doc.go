// Package testutil provides testing utilities for gparse.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Inputs
//
//	rng := testutil.NewRNG(seed)
//	scores := rng.Probabilities(100)  // values in (0, 1]
//	dist := rng.Distribution(4)       // sums to one
//
// # Counting Evaluator
//
// CountingEvaluator wraps an eval.Evaluator and records how often each chart
// span was turned into a continuation and how many evaluation steps ran.
//
// # Scripted Grammar
//
// Grammar is a table-driven shiftreduce.Grammar for tests that need exact
// control over lexical entries, binary rules and probabilities.
package testutil
