package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchq",
			Name:      "search_requests_total",
			Help:      "Total number of search requests",
		},
		[]string{"index", "kind", "status"},
	)

	SearchRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "searchq",
			Name:      "search_request_duration_seconds",
			Help:      "Search request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"index", "kind"},
	)

	SearchHitsReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "searchq",
			Name:      "search_hits_returned",
			Help:      "Number of hits returned per search page",
			Buckets:   []float64{0, 1, 10, 50, 100, 500, 1000, 5000},
		},
		[]string{"index"},
	)

	ScrollBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchq",
			Name:      "scroll_batches_total",
			Help:      "Total scroll batches served",
		},
		[]string{"index"},
	)

	ScrollsClearedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchq",
			Name:      "scrolls_cleared_total",
			Help:      "Total scroll cursors cleared",
		},
		[]string{"index"},
	)

	DeletedDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchq",
			Name:      "deleted_documents_total",
			Help:      "Total documents removed by delete-by-query",
		},
		[]string{"index"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchRequestDuration)
	prometheus.MustRegister(SearchHitsReturned)
	prometheus.MustRegister(ScrollBatchesTotal)
	prometheus.MustRegister(ScrollsClearedTotal)
	prometheus.MustRegister(DeletedDocumentsTotal)
	searchMetricsRegistered = true
}
