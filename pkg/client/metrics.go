package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for API client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytdata_requests_total",
		Help: "Total API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ytdata_request_duration_seconds",
		Help:    "API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytdata_errors_total",
		Help: "Total API errors by class",
	}, []string{"class"})

	decodeErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytdata_decode_errors_total",
		Help: "Total responses rejected by the envelope decoder, by endpoint",
	}, []string{"endpoint"})

	throttleWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ytdata_throttle_wait_seconds",
		Help:    "Time spent waiting on the client-side request throttle",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	breakerStateChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytdata_circuit_breaker_transitions_total",
		Help: "Circuit breaker state transitions by target state",
	}, []string{"to"})
)
