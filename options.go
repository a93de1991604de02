package gparse

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/jayantk/jklol-sub002/search"
)

// DefaultBeamSize is the beam of the default interleaved strategy.
const DefaultBeamSize = 100

type options struct {
	strategy         search.Strategy
	metricsCollector MetricsCollector
	logger           *Logger
	timer            search.Timer
}

// Option configures Parser construction.
type Option func(*options)

// WithStrategy configures the search strategy.
//
// If nil is passed, an interleaved search with DefaultBeamSize is used.
//
// Example:
//
//	p, _ := gparse.New(g, ev, gparse.WithStrategy(&search.Pipelined{
//	    BeamSize:        100,
//	    MaxStackSize:    10,
//	    NumLogicalForms: 5,
//	    EvalBeamSize:    20,
//	    Parallelism:     4,
//	}))
func WithStrategy(s search.Strategy) Option {
	return func(o *options) {
		if s == nil {
			s = defaultStrategy()
		}
		o.strategy = s
	}
}

// WithMetricsCollector configures a metrics collector for monitoring parses.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &gparse.BasicMetricsCollector{}
//	p, _ := gparse.New(g, ev, gparse.WithMetricsCollector(metrics))
//	// ... parse ...
//	stats := metrics.GetStats()
//	fmt.Printf("Parses: %d, Avg latency: %dns\n", stats.ParseCount, stats.ParseAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for parses.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := gparse.NewJSONLogger(slog.LevelDebug)
//	p, _ := gparse.New(g, ev, gparse.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithTimer configures the phase timer handed to every search.
func WithTimer(t search.Timer) Option {
	return func(o *options) {
		if t == nil {
			t = search.NoopTimer{}
		}
		o.timer = t
	}
}

// WithTracer records every search phase as an OpenTelemetry span.
// Convenience wrapper for WithTimer(search.NewTracingTimer(tracer)).
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.timer = search.NewTracingTimer(tracer)
	}
}

func defaultStrategy() search.Strategy {
	return &search.Interleaved{BeamSize: DefaultBeamSize}
}

func applyOptions(optFns []Option) options {
	o := options{
		strategy:         defaultStrategy(),
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		timer:            search.NoopTimer{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
