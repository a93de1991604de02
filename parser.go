package gparse

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/jayantk/jklol-sub002/chart"
	"github.com/jayantk/jklol-sub002/eval"
	"github.com/jayantk/jklol-sub002/search"
	"github.com/jayantk/jklol-sub002/shiftreduce"
)

// Result is a grounded parse.
type Result = search.Result

// Parser couples a grammar and an evaluator with a search strategy. It is
// safe for concurrent use if the grammar, evaluator and metrics collector
// are.
type Parser struct {
	grammar   shiftreduce.Grammar
	evaluator eval.Evaluator
	strategy  search.Strategy
	metrics   MetricsCollector
	logger    *Logger
	timer     search.Timer
}

// New creates a Parser.
func New(g shiftreduce.Grammar, ev eval.Evaluator, optFns ...Option) (*Parser, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: grammar", ErrMissingCollaborator)
	}
	if ev == nil {
		return nil, fmt.Errorf("%w: evaluator", ErrMissingCollaborator)
	}
	opts := applyOptions(optFns)
	return &Parser{
		grammar:   g,
		evaluator: ev,
		strategy:  opts.strategy,
		metrics:   opts.metricsCollector,
		logger:    opts.logger,
		timer:     opts.timer,
	}, nil
}

// Strategy returns the configured search strategy.
func (p *Parser) Strategy() search.Strategy { return p.strategy }

// ParseOptions contains options for a single parse.
type ParseOptions struct {
	// Cost is applied to every search state. Nil keeps all.
	Cost search.Cost
	// EntryCost is applied to every chart entry. Nil keeps all.
	EntryCost chart.EntryCost
}

// Parse returns the grounded parses of words against diagram, best first.
// An empty result with a nil error means no derivation survived the search.
func (p *Parser) Parse(ctx context.Context, words []string, diagram any, optFns ...func(o *ParseOptions)) ([]Result, error) {
	start := time.Now()
	var opts ParseOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	logger := p.logger.
		WithRunID(uuid.NewString()).
		WithStrategy(p.strategy.Name()).
		WithWords(words)

	if len(words) == 0 {
		err := ErrEmptySentence
		p.metrics.RecordParse(0, 0, time.Since(start), err)
		logger.LogParse(ctx, 0, 0, err)
		return nil, err
	}

	results, err := p.strategy.Search(ctx, search.Request{
		Grammar:   p.grammar,
		Evaluator: p.evaluator,
		Words:     words,
		Diagram:   diagram,
		Cost:      opts.Cost,
		EntryCost: opts.EntryCost,
		Logger:    logger.Logger,
		Timer:     p.timer,
		Observer:  p.metrics,
	})
	if err != nil {
		err = translateError(err)
		p.metrics.RecordParse(len(words), 0, time.Since(start), err)
		logger.LogParse(ctx, 0, 0, err)
		return nil, err
	}

	var best float64
	if len(results) > 0 {
		best = results[0].Prob
	}
	p.metrics.RecordParse(len(words), len(results), time.Since(start), nil)
	logger.LogParse(ctx, len(results), best, nil)
	return results, nil
}

// ParseString tokenizes sentence and parses it.
func (p *Parser) ParseString(ctx context.Context, sentence string, diagram any, optFns ...func(o *ParseOptions)) ([]Result, error) {
	return p.Parse(ctx, Tokenize(sentence), diagram, optFns...)
}

// Tokenize splits a sentence on whitespace and strips surrounding
// punctuation from each token.
func Tokenize(sentence string) []string {
	fields := strings.Fields(sentence)
	words := fields[:0]
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) && r != '_'
		})
		if f != "" {
			words = append(words, f)
		}
	}
	return words
}
