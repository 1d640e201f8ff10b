// Package metrics provides Prometheus metrics collection for the forecast dashboard.
// It defines and manages the metrics for upstream service calls, view refreshes,
// live-update clients and demo-data fallbacks, exposed via the Prometheus
// metrics endpoint for monitoring and alerting.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcomes used as the "outcome" label.
const (
	OutcomeOK     = "ok"
	OutcomeHTTP   = "http_error"
	OutcomeFailed = "transport_error"
)

// Metrics holds all Prometheus metrics for the dashboard.
type Metrics struct {
	// Upstream service metrics
	RequestsTotal     *prometheus.CounterVec   // Calls to the forecasting service by endpoint and outcome
	RequestDuration   *prometheus.HistogramVec // Call latency by endpoint
	NormalizedPayload *prometheus.CounterVec   // Malformed payloads coerced to an empty default
	SwallowedFailures *prometheus.CounterVec   // Failed soft-endpoint calls answered with a default

	// View metrics
	ViewRefreshes  *prometheus.CounterVec   // View builds by view name
	ViewFailures   *prometheus.CounterVec   // Partial failures inside a settled view
	StaleDiscarded *prometheus.CounterVec   // Results dropped because a newer selection superseded them
	ViewDuration   *prometheus.HistogramVec // Time to build a view
	DemoFallbacks  prometheus.Counter       // Views served from the demo data provider

	// Live update metrics
	WSClients    prometheus.Gauge   // Connected WebSocket clients
	WSBroadcasts prometheus.Counter // Messages pushed to clients

	// Chart metrics
	ChartPoints prometheus.Histogram // Candles laid out per chart render
}

// New creates and registers all Prometheus metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of forecasting service requests",
		}, []string{"endpoint", "outcome"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Forecasting service request latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"endpoint"}),
		NormalizedPayload: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "upstream_payloads_normalized_total",
			Help: "Total number of malformed payloads replaced with an empty default",
		}, []string{"endpoint"}),
		SwallowedFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "upstream_failures_swallowed_total",
			Help: "Total number of failed soft-endpoint calls replaced with a default",
		}, []string{"endpoint"}),
		ViewRefreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "view_refreshes_total",
			Help: "Total number of dashboard view refreshes",
		}, []string{"view"}),
		ViewFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "view_partial_failures_total",
			Help: "Total number of failed fetches absorbed by a view",
		}, []string{"view", "source"}),
		StaleDiscarded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "view_stale_results_total",
			Help: "Total number of superseded view results discarded",
		}, []string{"view"}),
		ViewDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "view_build_duration_seconds",
			Help:    "Time spent building a dashboard view in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"view"}),
		DemoFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "demo_fallbacks_total",
			Help: "Total number of views served from demo data",
		}),
		WSClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ws_clients",
			Help: "Number of connected WebSocket clients",
		}),
		WSBroadcasts: factory.NewCounter(prometheus.CounterOpts{
			Name: "ws_broadcasts_total",
			Help: "Total number of view updates pushed to WebSocket clients",
		}),
		ChartPoints: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chart_candles",
			Help:    "Number of candles laid out per chart render",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
	}
}

// ObserveRequest records one upstream call.
func (m *Metrics) ObserveRequest(endpoint, outcome string, elapsed time.Duration) {
	m.RequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	m.RequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// FailureSwallowed records a soft-endpoint failure that was answered with a
// default. The request itself is already counted by ObserveRequest.
func (m *Metrics) FailureSwallowed(endpoint string) {
	m.SwallowedFailures.WithLabelValues(endpoint).Inc()
}

// PayloadNormalized records a malformed payload that was coerced.
func (m *Metrics) PayloadNormalized(endpoint string) {
	m.NormalizedPayload.WithLabelValues(endpoint).Inc()
}
