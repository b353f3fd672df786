// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GradesSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grade_entries_submitted_total",
			Help: "Total number of grade entries written",
		},
		[]string{"level", "track", "term"},
	)

	ValidationErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validation_errors_total",
			Help: "Total number of rejected submissions",
		},
		[]string{"operation"},
	)

	GeneralAverageHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "general_average",
			Help:    "Distribution of computed general averages",
			Buckets: prometheus.LinearBuckets(0, 2, 11),
		},
		[]string{"level", "track"},
	)

	RankingComputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ranking_compute_duration_seconds",
			Help:    "Time spent computing a cohort ranking",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"level", "track"},
	)

	RankingCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_cache_requests_total",
			Help: "Ranking cache lookups by outcome",
		},
		[]string{"result"},
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
