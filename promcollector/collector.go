// Package promcollector exports gparse parse and search metrics to
// Prometheus.
package promcollector

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	gparse "github.com/jayantk/jklol-sub002"
	"github.com/jayantk/jklol-sub002/chart"
)

// Compile time check.
var _ gparse.MetricsCollector = (*Collector)(nil)

// Parse outcomes used as the status label.
const (
	StatusOK    = "ok"
	StatusEmpty = "empty"
	StatusError = "error"
)

// Collector implements gparse.MetricsCollector with Prometheus collectors.
// It is safe for concurrent use.
type Collector struct {
	ParsesTotal        *prometheus.CounterVec
	ParseDuration      *prometheus.HistogramVec
	ParseWords         prometheus.Histogram
	ParseResults       prometheus.Histogram
	RoundsTotal        prometheus.Counter
	BeamSize           prometheus.Histogram
	EvaluationsTotal   prometheus.Counter
	SuccessorsTotal    prometheus.Counter
	LookaheadsTotal    prometheus.Counter
	DiscardsTotal      prometheus.Counter
	ChartEntries       prometheus.Histogram
	ChartEvaluatedSize prometheus.Histogram
}

// New creates a Collector and registers it with reg. An empty namespace
// omits the metric name prefix.
func New(reg prometheus.Registerer, namespace string) *Collector {
	sizeBuckets := prometheus.ExponentialBuckets(1, 2, 12)
	c := &Collector{
		ParsesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "parses_total",
				Help:      "Total parses by status (ok, empty, error).",
			},
			[]string{"status"},
		),
		ParseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "parse_duration_seconds",
				Help:      "Parse latency in seconds.",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"status"},
		),
		ParseWords: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "parse_words",
				Help:      "Sentence length per parse.",
				Buckets:   []float64{1, 2, 5, 10, 20, 50},
			},
		),
		ParseResults: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "parse_results",
				Help:      "Number of grounded parses returned per parse.",
				Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		RoundsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_rounds_total",
				Help:      "Total search rounds.",
			},
		),
		BeamSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_beam_size",
				Help:      "Number of states in the beam per round.",
				Buckets:   sizeBuckets,
			},
		),
		EvaluationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluation_steps_total",
				Help:      "Total evaluation steps.",
			},
		),
		SuccessorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluation_successors_total",
				Help:      "Total successor states produced by evaluation steps.",
			},
		),
		LookaheadsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluation_lookaheads_total",
				Help:      "Total deterministic evaluation steps continued without queueing.",
			},
		),
		DiscardsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_discards_total",
				Help:      "Total states discarded by the search cost.",
			},
		),
		ChartEntries: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "chart_entries",
				Help:      "Chart entries per search.",
				Buckets:   sizeBuckets,
			},
		),
		ChartEvaluatedSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "chart_evaluated_entries",
				Help:      "Chart entries carrying an evaluation result per search.",
				Buckets:   sizeBuckets,
			},
		),
	}

	reg.MustRegister(
		c.ParsesTotal,
		c.ParseDuration,
		c.ParseWords,
		c.ParseResults,
		c.RoundsTotal,
		c.BeamSize,
		c.EvaluationsTotal,
		c.SuccessorsTotal,
		c.LookaheadsTotal,
		c.DiscardsTotal,
		c.ChartEntries,
		c.ChartEvaluatedSize,
	)

	return c
}

// RecordParse implements gparse.MetricsCollector.
func (c *Collector) RecordParse(words, results int, duration time.Duration, err error) {
	status := StatusOK
	switch {
	case err != nil:
		status = StatusError
	case results == 0:
		status = StatusEmpty
	}
	c.ParsesTotal.WithLabelValues(status).Inc()
	c.ParseDuration.WithLabelValues(status).Observe(duration.Seconds())
	if err == nil {
		c.ParseWords.Observe(float64(words))
		c.ParseResults.Observe(float64(results))
	}
}

// OnRound implements search.Observer.
func (c *Collector) OnRound(_, beam int) {
	c.RoundsTotal.Inc()
	c.BeamSize.Observe(float64(beam))
}

// OnEvaluate implements search.Observer.
func (c *Collector) OnEvaluate(successors int) {
	c.EvaluationsTotal.Inc()
	c.SuccessorsTotal.Add(float64(successors))
}

// OnLookahead implements search.Observer.
func (c *Collector) OnLookahead() { c.LookaheadsTotal.Inc() }

// OnDiscard implements search.Observer.
func (c *Collector) OnDiscard() { c.DiscardsTotal.Inc() }

// OnChart implements search.Observer.
func (c *Collector) OnChart(s chart.Stats) {
	c.ChartEntries.Observe(float64(s.Entries))
	c.ChartEvaluatedSize.Observe(float64(s.Evaluated))
}

// Handler returns the Prometheus scrape HTTP handler for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
