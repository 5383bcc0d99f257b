// Package metrics provides the Prometheus registry and HTTP exposition for
// the YouTube Data API client. All metrics are defined in their respective
// packages (client, pagination, cursor) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Handler serves the default gatherer in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{})
}

// NewServer returns an HTTP server exposing /metrics and /health on addr.
// The caller starts and shuts it down.
func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", healthHandler)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - ytdata_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//     (status is "network_error" or "circuit_open" when no response arrived)
//   - ytdata_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - ytdata_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//   - ytdata_decode_errors_total{endpoint} (Counter): Responses rejected by the envelope decoder
//   - ytdata_throttle_wait_seconds (Histogram): Time spent in the client-side throttle
//   - ytdata_circuit_breaker_transitions_total{to} (Counter): Breaker state transitions
//
// Pagination Metrics (pkg/pagination):
//   - ytdata_pagination_pages_fetched_total{endpoint} (Counter): Pages requested by sequences
//   - ytdata_pagination_items_yielded_total{endpoint} (Counter): Elements handed to consumers
//   - ytdata_pagination_sequences_finished_total{endpoint, reason} (Counter): Sequence ends
//     by reason (limit, last_page)
//
// Cursor Metrics (pkg/cursor):
//   - ytdata_cursor_store_operations_total{backend, op, result} (Counter): Store operations
//
// Example Prometheus Queries:
//
//   # Items per page actually consumed
//   sum(rate(ytdata_pagination_items_yielded_total[5m])) by (endpoint) /
//   sum(rate(ytdata_pagination_pages_fetched_total[5m])) by (endpoint)
//
//   # Quota errors
//   rate(ytdata_requests_total{status="403"}[5m])
//
//   # Request Error Rate
//   rate(ytdata_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(ytdata_request_duration_seconds_bucket[5m]))
