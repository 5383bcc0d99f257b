package cursor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// storeOps counts cursor store operations by backend, operation and outcome.
	storeOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytdata_cursor_store_operations_total",
			Help: "Total cursor store operations by backend, operation and result",
		},
		[]string{"backend", "op", "result"}, // result: hit, miss, ok, error
	)
)
