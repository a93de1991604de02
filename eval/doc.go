// Package eval defines the contract between the parser and an incremental
// evaluator of logical forms.
//
// Evaluation proceeds in steps. A State is either Suspended, holding an
// opaque continuation and the environment it runs in, or Denoted, holding
// the final value. Each call to Evaluator.Continue advances a suspended
// state by one step and may branch into several successors, each with its
// own probability and diagram.
package eval
