package search

import (
	"context"
	"maps"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Phases timed by the strategies.
const (
	PhaseSearch          = "search"
	PhaseInitialize      = "initialize"
	PhaseParseStep       = "parse_step"
	PhaseEvaluateStep    = "evaluate_step"
	PhaseSkipLeft        = "skip_left"
	PhaseSyntacticSearch = "syntactic_search"
	PhaseAggregate       = "aggregate"
	PhaseEvaluateForms   = "evaluate_forms"
)

// Timer measures named phases. The returned function ends the phase.
type Timer interface {
	Start(ctx context.Context, phase string) (context.Context, func())
}

// NoopTimer measures nothing.
type NoopTimer struct{}

// Start implements Timer.
func (NoopTimer) Start(ctx context.Context, _ string) (context.Context, func()) {
	return ctx, func() {}
}

// PhaseStats is the accumulated time of one phase.
type PhaseStats struct {
	Count int64
	Total time.Duration
}

// Stopwatch accumulates durations per phase. It is safe for concurrent use.
type Stopwatch struct {
	mu     sync.Mutex
	phases map[string]PhaseStats
}

// NewStopwatch creates an empty Stopwatch.
func NewStopwatch() *Stopwatch {
	return &Stopwatch{phases: make(map[string]PhaseStats)}
}

// Start implements Timer.
func (s *Stopwatch) Start(ctx context.Context, phase string) (context.Context, func()) {
	start := time.Now()
	return ctx, func() {
		d := time.Since(start)
		s.mu.Lock()
		defer s.mu.Unlock()
		ps := s.phases[phase]
		ps.Count++
		ps.Total += d
		s.phases[phase] = ps
	}
}

// Phase returns the stats of one phase.
func (s *Stopwatch) Phase(phase string) PhaseStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phases[phase]
}

// Snapshot returns a copy of all phase stats.
func (s *Stopwatch) Snapshot() map[string]PhaseStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.phases)
}

// TracingTimer records each phase as an OpenTelemetry span.
type TracingTimer struct {
	tracer trace.Tracer
}

// NewTracingTimer creates a timer that starts spans with tracer.
func NewTracingTimer(tracer trace.Tracer) *TracingTimer {
	return &TracingTimer{tracer: tracer}
}

// Start implements Timer.
func (t *TracingTimer) Start(ctx context.Context, phase string) (context.Context, func()) {
	ctx, span := t.tracer.Start(ctx, "gparse."+phase,
		trace.WithAttributes(attribute.String("gparse.phase", phase)),
	)
	return ctx, func() { span.End() }
}
