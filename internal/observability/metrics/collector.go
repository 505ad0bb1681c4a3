// Package metrics exposes Prometheus instrumentation for the pipeline and
// its collaborators.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the pipeline metrics.
type Collector struct {
	registry *prometheus.Registry

	// PipelineRequests counts completed pipeline runs by terminal stage.
	PipelineRequests *prometheus.CounterVec
	// StageDuration observes per-stage latency.
	StageDuration *prometheus.HistogramVec
	// CollaboratorErrors counts absorbed collaborator failures.
	CollaboratorErrors *prometheus.CounterVec
	// RequestDuration observes HTTP request latency.
	RequestDuration *prometheus.HistogramVec
}

// NewCollector creates a collector backed by its own registry, so multiple
// instances (tests included) never collide on metric registration.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		PipelineRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_requests_total",
				Help: "Pipeline runs by terminal stage",
			},
			[]string{"stage"},
		),

		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pipeline_stage_duration_seconds",
				Help:    "Pipeline stage duration in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"stage"},
		),

		CollaboratorErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collaborator_errors_total",
				Help: "Absorbed collaborator failures by collaborator",
			},
			[]string{"collaborator"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "endpoint", "status"},
		),
	}

	c.registry.MustRegister(c.PipelineRequests)
	c.registry.MustRegister(c.StageDuration)
	c.registry.MustRegister(c.CollaboratorErrors)
	c.registry.MustRegister(c.RequestDuration)

	return c
}

// CollaboratorError counts one absorbed collaborator failure. Safe to call on
// a nil collector, so components without instrumentation skip it silently.
func (c *Collector) CollaboratorError(collaborator string) {
	if c == nil {
		return
	}
	c.CollaboratorErrors.WithLabelValues(collaborator).Inc()
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
