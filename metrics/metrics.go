// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// NegotiationsTotal tracks finished negotiations by outcome.
	NegotiationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "negotiations_total",
			Help: "Total finished negotiations",
		},
		[]string{"outcome"},
	)

	// NegotiationDuration tracks wall clock time per negotiation.
	NegotiationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "negotiation_duration_seconds",
			Help:    "Negotiation duration in seconds",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
		},
		[]string{"outcome"},
	)

	// NegotiationRounds tracks how many rounds negotiations take.
	NegotiationRounds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "negotiation_rounds",
			Help:    "Rounds per finished negotiation",
			Buckets: prometheus.LinearBuckets(1, 1, 15),
		},
	)

	// ActiveNegotiations tracks negotiations currently in flight.
	ActiveNegotiations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "negotiations_active",
			Help: "Number of negotiations currently running",
		},
	)

	// EventsEmittedTotal tracks emitted negotiation events by type.
	EventsEmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "negotiation_events_total",
			Help: "Total negotiation events emitted",
		},
		[]string{"type"},
	)

	// SSEConnectionsActive tracks active SSE connections.
	SSEConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)

	// IntakeQueueDepth tracks queued intake constraints.
	IntakeQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "intake_queue_depth",
			Help: "Number of queued intake constraints",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordNegotiation records metrics for a finished negotiation.
func RecordNegotiation(outcome string, duration float64, rounds int) {
	NegotiationsTotal.WithLabelValues(outcome).Inc()
	NegotiationDuration.WithLabelValues(outcome).Observe(duration)
	NegotiationRounds.Observe(float64(rounds))
}

// RecordEvent counts one emitted negotiation event.
func RecordEvent(eventType string) {
	EventsEmittedTotal.WithLabelValues(eventType).Inc()
}

// IncrementActiveNegotiations increments the running negotiation count.
func IncrementActiveNegotiations() {
	ActiveNegotiations.Inc()
}

// DecrementActiveNegotiations decrements the running negotiation count.
func DecrementActiveNegotiations() {
	ActiveNegotiations.Dec()
}

// IncrementSSEConnections increments the active SSE connection count.
func IncrementSSEConnections() {
	SSEConnectionsActive.Inc()
}

// DecrementSSEConnections decrements the active SSE connection count.
func DecrementSSEConnections() {
	SSEConnectionsActive.Dec()
}

// SetIntakeQueueDepth records the current intake queue depth.
func SetIntakeQueueDepth(depth int) {
	IntakeQueueDepth.Set(float64(depth))
}
