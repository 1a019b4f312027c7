// Package telemetry exposes Prometheus metrics for explanation renders.
package telemetry

import (
	"time"

	"github.com/njchilds90/intsteps"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Render outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeNotEvaluable = "not_evaluable"
	OutcomeBadInput     = "bad_input"
	OutcomeError        = "error"
)

type Metrics struct {
	Renders      *prometheus.CounterVec
	Duration     prometheus.Histogram
	Rules        *prometheus.CounterVec
	Finalized    *prometheus.CounterVec
	CacheLookups *prometheus.CounterVec
}

// New registers the metrics on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Renders: f.NewCounterVec(prometheus.CounterOpts{
			Name: "intsteps_renders_total",
			Help: "Explanation requests by outcome.",
		}, []string{"outcome"}),
		Duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "intsteps_render_duration_seconds",
			Help:    "Time spent deriving and rendering an explanation.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		Rules: f.NewCounterVec(prometheus.CounterOpts{
			Name: "intsteps_rules_rendered_total",
			Help: "Rule nodes rendered, by rule tag.",
		}, []string{"rule"}),
		Finalized: f.NewCounterVec(prometheus.CounterOpts{
			Name: "intsteps_finalized_total",
			Help: "Finished renders by whether a closed-form answer was produced.",
		}, []string{"answered"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "intsteps_cache_lookups_total",
			Help: "Explanation cache lookups by result.",
		}, []string{"result"}),
	}
}

// Hooks feeds the renderer lifecycle into the rule and finalize counters.
func (m *Metrics) Hooks() intsteps.Hooks {
	return intsteps.Hooks{
		OnRule: func(e *intsteps.RuleEvent) {
			m.Rules.WithLabelValues(string(e.Tag)).Inc()
		},
		OnFinalize: func(e *intsteps.FinalizeEvent) {
			label := "false"
			if e.Answered {
				label = "true"
			}
			m.Finalized.WithLabelValues(label).Inc()
		},
	}
}

// ObserveRender records one request.
func (m *Metrics) ObserveRender(outcome string, elapsed time.Duration) {
	m.Renders.WithLabelValues(outcome).Inc()
	m.Duration.Observe(elapsed.Seconds())
}

// CacheHit and CacheMiss count lookups.
func (m *Metrics) CacheHit()  { m.CacheLookups.WithLabelValues("hit").Inc() }
func (m *Metrics) CacheMiss() { m.CacheLookups.WithLabelValues("miss").Inc() }
