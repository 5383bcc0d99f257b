package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytdata_pagination_pages_fetched_total",
		Help: "Total pages fetched by lazy sequences, by endpoint",
	}, []string{"endpoint"})

	itemsYielded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytdata_pagination_items_yielded_total",
		Help: "Total raw items handed to consumers, by endpoint",
	}, []string{"endpoint"})

	sequencesFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytdata_pagination_sequences_finished_total",
		Help: "Sequences that ran to completion, by endpoint and reason (limit, last_page)",
	}, []string{"endpoint", "reason"})
)
