package gparse

import (
	"context"
	"iter"

	"github.com/jayantk/jklol-sub002/chart"
	"github.com/jayantk/jklol-sub002/search"
)

// Search creates a new fluent search builder for the given words.
//
// Example:
//
//	results, err := p.Search("two", "plus", "x").
//	    Diagram(arith.World{}.With("x", 3)).
//	    Filter(func(s *search.State) bool { return s.Finished() }).
//	    Execute(ctx)
//
//	// Or with streaming:
//	for r, err := range p.Search(words...).Stream(ctx) {
//	    if err != nil { break }
//	    if r.Prob < threshold { break }
//	    process(r)
//	}
func (p *Parser) Search(words ...string) *SearchBuilder {
	return &SearchBuilder{
		p:     p,
		words: words,
	}
}

// SearchBuilder is a fluent builder for constructing parse requests.
type SearchBuilder struct {
	p       *Parser
	words   []string
	diagram any
	limit   int

	cost      search.Cost
	filter    func(*search.State) bool
	entryCost chart.EntryCost
}

// Diagram sets the world the sentence is grounded in.
func (sb *SearchBuilder) Diagram(d any) *SearchBuilder {
	sb.diagram = d
	return sb
}

// Cost sets the state cost. It is combined with Filter if both are set.
func (sb *SearchBuilder) Cost(c search.Cost) *SearchBuilder {
	sb.cost = c
	return sb
}

// Filter discards every search state for which keep returns false.
func (sb *SearchBuilder) Filter(keep func(*search.State) bool) *SearchBuilder {
	sb.filter = keep
	return sb
}

// EntryCost sets the chart entry cost.
func (sb *SearchBuilder) EntryCost(c chart.EntryCost) *SearchBuilder {
	sb.entryCost = c
	return sb
}

// Limit truncates the results to at most n. Zero means no limit.
func (sb *SearchBuilder) Limit(n int) *SearchBuilder {
	sb.limit = n
	return sb
}

func (sb *SearchBuilder) stateCost() search.Cost {
	switch {
	case sb.filter == nil:
		return sb.cost
	case sb.cost == nil:
		return search.FilterCost(sb.filter)
	}
	filter, cost := search.FilterCost(sb.filter), sb.cost
	return func(s *search.State) float64 {
		if c := filter(s); c != 0 {
			return c
		}
		return cost(s)
	}
}

// Execute runs the search and returns the results.
func (sb *SearchBuilder) Execute(ctx context.Context) ([]Result, error) {
	results, err := sb.p.Parse(ctx, sb.words, sb.diagram, func(o *ParseOptions) {
		o.Cost = sb.stateCost()
		o.EntryCost = sb.entryCost
	})
	if err != nil {
		return nil, err
	}
	if sb.limit > 0 && len(results) > sb.limit {
		results = results[:sb.limit]
	}
	return results, nil
}

// MustExecute runs the search, panicking on error.
// Use this only in tests or when you're certain the request is valid.
func (sb *SearchBuilder) MustExecute(ctx context.Context) []Result {
	results, err := sb.Execute(ctx)
	if err != nil {
		panic(err)
	}
	return results
}

// Stream returns an iterator over the results, best first.
// The iterator supports early termination by breaking from the loop.
func (sb *SearchBuilder) Stream(ctx context.Context) iter.Seq2[Result, error] {
	return func(yield func(Result, error) bool) {
		results, err := sb.Execute(ctx)
		if err != nil {
			yield(Result{}, err)
			return
		}
		for _, r := range results {
			if !yield(r, nil) {
				return
			}
		}
	}
}

// First returns only the best result, or ErrNoParse if none survived.
func (sb *SearchBuilder) First(ctx context.Context) (Result, error) {
	results, err := sb.Execute(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(results) == 0 {
		return Result{}, ErrNoParse
	}
	return results[0], nil
}

// Count executes the search and returns the number of results.
func (sb *SearchBuilder) Count(ctx context.Context) (int, error) {
	results, err := sb.Execute(ctx)
	if err != nil {
		return 0, err
	}
	return len(results), nil
}

// Exists checks if at least one grounded parse survives the search.
func (sb *SearchBuilder) Exists(ctx context.Context) (bool, error) {
	results, err := sb.Execute(ctx)
	if err != nil {
		return false, err
	}
	return len(results) > 0, nil
}
