// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecalculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "markbook_recalculations_total",
			Help: "Total number of markbook recalculation passes",
		},
		[]string{"course", "outcome"},
	)

	FinalMarkHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "markbook_final_mark",
			Help:    "Distribution of recalculated final marks, in percent",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"course"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
