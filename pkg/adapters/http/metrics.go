package http

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Status labels of radiolab_tool_calls_total.
const (
	statusOK         = "ok"
	statusBadRequest = "bad_request"
	statusNotFound   = "not_found"
	statusInvalid    = "invalid_arguments"
	statusMismatch   = "server_mismatch"
	statusError      = "error"
)

// Metrics holds the tool server collectors on their own registry.
type Metrics struct {
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them, together with the
// Go runtime and process collectors, on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "radiolab_tool_calls_total",
				Help: "Total number of tool calls by tool and outcome",
			},
			[]string{"tool", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "radiolab_tool_duration_seconds",
				Help:    "Tool execution time",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 60},
			},
			[]string{"tool"},
		),
	}
	m.registry.MustRegister(
		m.calls,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe records one call. Unknown tools are recorded under "unknown".
func (m *Metrics) Observe(tool, status string, elapsed time.Duration) {
	if tool == "" {
		tool = "unknown"
	}
	m.calls.WithLabelValues(tool, status).Inc()
	if status == statusOK || status == statusError {
		m.duration.WithLabelValues(tool).Observe(elapsed.Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
