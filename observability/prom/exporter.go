// Package prom implements observability.Metrics on the Prometheus client
// library and exposes the standard /metrics handler.
package prom

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wellnesskit/wellness-agents/observability"
)

// Exporter implements observability.Metrics backed by a Prometheus registry.
type Exporter struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	tokens   *prometheus.CounterVec
	errors   *prometheus.CounterVec
	active   prometheus.Gauge
}

// New creates an exporter with its own registry.
func New() *Exporter {
	registry := prometheus.NewRegistry()

	e := &Exporter{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wellness_requests_total",
			Help: "Total wellness queries processed, by intent.",
		}, []string{"intent"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wellness_request_duration_seconds",
			Help:    "Query processing latency, by intent.",
			Buckets: prometheus.DefBuckets,
		}, []string{"intent"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wellness_tokens_total",
			Help: "LLM tokens consumed, by agent.",
		}, []string{"agent"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wellness_errors_total",
			Help: "Errors encountered, by type and agent.",
		}, []string{"type", "agent"}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wellness_agents_registered",
			Help: "Number of registered specialist agents.",
		}),
	}

	registry.MustRegister(e.requests, e.latency, e.tokens, e.errors, e.active)
	return e
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

func (e *Exporter) IncrementRequests(labels map[string]string) {
	e.requests.WithLabelValues(labels["intent"]).Inc()
}

func (e *Exporter) RecordLatency(d time.Duration, labels map[string]string) {
	e.latency.WithLabelValues(labels["intent"]).Observe(d.Seconds())
}

func (e *Exporter) IncrementTokensUsed(tokens int, labels map[string]string) {
	e.tokens.WithLabelValues(labels["agent"]).Add(float64(tokens))
}

func (e *Exporter) RecordError(errorType string, labels map[string]string) {
	e.errors.WithLabelValues(errorType, labels["agent"]).Inc()
}

func (e *Exporter) SetActiveAgents(count int) {
	e.active.Set(float64(count))
}

var _ observability.Metrics = (*Exporter)(nil)
