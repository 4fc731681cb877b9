// Package metrics holds the Prometheus collectors for ranking runs.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

// Metrics owns a dedicated registry so tests can create as many as they like.
// A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	runs         *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	skipped      prometheus.Counter
	agreement    *prometheus.CounterVec
	prunedRuns   prometheus.Counter
	alternatives prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ranker_runs_total",
			Help: "Ranking runs by SAW variant and outcome.",
		}, []string{"variant", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ranker_run_duration_seconds",
			Help:    "Wall time of a ranking run, including persistence.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"variant"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ranker_alternatives_skipped_total",
			Help: "Alternatives excluded from a run for missing or non-numeric values.",
		}),
		agreement: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ranker_top_choice_agreement_total",
			Help: "Completed runs by whether SAW and WP chose the same top alternative.",
		}, []string{"agree"}),
		prunedRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ranker_runs_pruned_total",
			Help: "Runs deleted by the retention loop.",
		}),
		alternatives: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ranker_run_alternatives",
			Help:    "Alternatives ranked per completed run.",
			Buckets: []float64{2, 4, 8, 16, 32, 64, 128, 256},
		}),
	}
	reg.MustRegister(
		m.runs, m.duration, m.skipped, m.agreement, m.prunedRuns, m.alternatives,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRun records one finished run. alternatives and skipped count rows
// kept and excluded; agree is ignored for failed runs.
func (m *Metrics) ObserveRun(variant, outcome string, d time.Duration, alternatives, skipped int, agree bool) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(variant, outcome).Inc()
	m.duration.WithLabelValues(variant).Observe(d.Seconds())
	if skipped > 0 {
		m.skipped.Add(float64(skipped))
	}
	if outcome == OutcomeCompleted {
		m.agreement.WithLabelValues(strconv.FormatBool(agree)).Inc()
		m.alternatives.Observe(float64(alternatives))
	}
}

func (m *Metrics) ObservePruned(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.prunedRuns.Add(float64(n))
}
