package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "weight_calculator"

// Metrics holds the service collectors and the registry they are exposed from.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	CalculationsTotal *prometheus.CounterVec
	SessionMutations  *prometheus.CounterVec
	SessionsActive    prometheus.Gauge
	RejectedInputs    *prometheus.CounterVec
}

// New creates a Metrics instance backed by its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "route"},
	)

	m.CalculationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Stateless shipment calculations by shipping mode",
		},
		[]string{"shipping_mode"},
	)

	m.SessionMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_mutations_total",
			Help:      "Session mutations by kind",
		},
		[]string{"kind"},
	)

	m.SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of calculator sessions held in memory",
		},
	)

	m.RejectedInputs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_inputs_total",
			Help:      "Measurements rejected for not matching the decimal format",
		},
		[]string{"field"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.CalculationsTotal,
		m.SessionMutations,
		m.SessionsActive,
		m.RejectedInputs,
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records one completed request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordCalculation counts a stateless calculation.
func (m *Metrics) RecordCalculation(mode string) {
	m.CalculationsTotal.WithLabelValues(mode).Inc()
}

// RecordMutation counts a session mutation of the given kind.
func (m *Metrics) RecordMutation(kind string) {
	m.SessionMutations.WithLabelValues(kind).Inc()
}

// RecordRejectedInput counts a measurement that failed validation.
func (m *Metrics) RecordRejectedInput(field string) {
	m.RejectedInputs.WithLabelValues(field).Inc()
}

// SetActiveSessions updates the live session gauge.
func (m *Metrics) SetActiveSessions(n int) {
	m.SessionsActive.Set(float64(n))
}
