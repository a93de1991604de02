// Package gparse provides incremental grounded semantic parsing.
//
// A sentence is parsed with a shift-reduce grammar while the logical forms
// of completed constituents are evaluated against a world, the diagram, as
// soon as they are built. Evaluation may be nondeterministic: each choice
// point suspends the evaluation and forks the search, so syntactic and
// semantic hypotheses compete in one beam.
//
// # Quick Start
//
// The arith package ships a small arithmetic grammar and evaluator:
//
//	lex := arith.DefaultLexicon()
//	g, _ := arith.NewGrammar(lex)
//	p, _ := gparse.New(g, arith.NewEvaluator(lex.Domain...))
//
//	results, _ := p.ParseString(ctx, "two times x", arith.World{}.With("x", 3))
//	fmt.Println(results[0].Denotation, results[0].Prob) // 6 1
//
// Search with the fluent API:
//
//	best, err := p.Search("one_or_two", "plus", "x").
//	    Diagram(arith.World{}).
//	    Filter(func(s *search.State) bool {
//	        v, ok := s.Denotation()
//	        return !ok || v != 3
//	    }).
//	    First(ctx)
//
// # Strategies
//
// Two strategies implement search.Strategy:
//
//   - search.Interleaved evaluates while parsing. Deterministic evaluation
//     steps are followed without queueing and completed evaluations are
//     memoized in the chart.
//   - search.Pipelined runs a syntactic beam search first, groups the parses
//     by logical form and evaluates the best forms, optionally in parallel.
//
// # Observability
//
// Parses are logged through Logger (log/slog) with a per-call run id,
// counted through a MetricsCollector (see the promcollector package for
// Prometheus) and timed per phase through a search.Timer. WithTracer records
// every phase as an OpenTelemetry span.
//
// # Errors
//
// A search that finds nothing returns an empty result and a nil error.
// Overflowing a scratch queue is fatal and returns *ErrCapacity, which
// matches ErrCapacityExceeded.
package gparse
