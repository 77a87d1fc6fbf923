// Package metrics exposes Prometheus collectors for the generation path.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "inkgate"

// Request outcomes for GenerationsTotal.
const (
	OutcomeGenerated   = "generated"
	OutcomeFallback    = "fallback"
	OutcomeInvalid     = "invalid"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
)

// Metrics holds the collectors and the registry they are registered on.
type Metrics struct {
	registry *prometheus.Registry

	generations     *prometheus.CounterVec
	attempts        *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	requestDuration prometheus.Histogram
}

// New creates a registry with the Go and process collectors plus the
// application metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generation_requests_total",
				Help:      "Generate requests by outcome",
			},
			[]string{"outcome"},
		),
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_attempts_total",
				Help:      "Provider attempts by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		attemptDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_attempt_duration_seconds",
				Help:      "Provider attempt duration in seconds",
				Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 40, 60},
			},
			[]string{"provider"},
		),
		requestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_request_duration_seconds",
				Help:      "End-to-end generate request duration in seconds",
				Buckets:   []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
			},
		),
	}

	reg.MustRegister(m.generations, m.attempts, m.attemptDuration, m.requestDuration)

	for _, o := range []string{OutcomeGenerated, OutcomeFallback, OutcomeInvalid, OutcomeRateLimited, OutcomeError} {
		m.generations.WithLabelValues(o).Add(0)
	}
	return m
}

// ObserveAttempt records one provider attempt.
func (m *Metrics) ObserveAttempt(provider, outcome string, d time.Duration) {
	m.attempts.WithLabelValues(provider, outcome).Inc()
	m.attemptDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveRequest records a finished generate request.
func (m *Metrics) ObserveRequest(outcome string, d time.Duration) {
	m.generations.WithLabelValues(outcome).Inc()
	if outcome != OutcomeRateLimited {
		m.requestDuration.Observe(d.Seconds())
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
