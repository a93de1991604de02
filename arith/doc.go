// Package arith is a small grounded grammar over integer arithmetic.
//
// Words map to categorial categories such as N and (N\N)/N whose semantics
// are expressions of a tiny language:
//
//	1            integer
//	x            variable, bound by a lambda or resolved in the world
//	amb(1:0.6, 2:0.4)
//	             nondeterministic choice
//	\x.x + 1     lambda
//	a + b, a - b, a * b
//
// The Evaluator runs expressions in continuation-passing style. Deterministic
// work completes within one step; each amb and each variable missing from
// the World suspends the evaluation with one successor per choice. The World is
// an immutable assignment of variables that grows as variables are
// resolved.
//
// Grammar and Evaluator implement the collaborator interfaces of the
// shiftreduce and eval packages, so they can drive any search strategy.
package arith
