package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"llamable/generator"
)

// Metrics holds the collectors exposed on /metrics. Each Server owns its
// own registry.
type Metrics struct {
	registry *prometheus.Registry

	runs              *prometheus.CounterVec
	attempts          prometheus.Histogram
	enhancerFallbacks prometheus.Counter
	requestDuration   *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "llamable_generation_runs_total",
			Help: "Generation runs by outcome.",
		}, []string{"outcome"}),
		attempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "llamable_generation_attempts",
			Help:    "Generation-stage model calls per run.",
			Buckets: []float64{1, 2, 3, 4, 5},
		}),
		enhancerFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "llamable_enhancer_fallbacks_total",
			Help: "Runs that fell back to the raw prompt.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "llamable_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"method", "route", "status"}),
	}
	m.registry.MustRegister(m.runs, m.attempts, m.enhancerFallbacks, m.requestDuration)
	return m
}

func (m *Metrics) observeRun(res generator.Result, err error) {
	m.runs.WithLabelValues(outcome(res, err)).Inc()
	if res.Attempts > 0 {
		m.attempts.Observe(float64(res.Attempts))
		if !res.EnhancerUsed {
			m.enhancerFallbacks.Inc()
		}
	}
}

func outcome(res generator.Result, err error) string {
	switch {
	case generator.IsValidation(err):
		return "validation_error"
	case generator.IsConfiguration(err):
		return "configuration_error"
	case generator.IsTransport(err):
		return "transport_error"
	case err != nil:
		return "error"
	case res.IsSite && !res.Complete:
		return "incomplete"
	}
	return "ok"
}
