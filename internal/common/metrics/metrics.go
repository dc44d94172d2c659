// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_handled_total",
			Help: "Total number of jobs picked up by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	ApplicationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_applications_created_total",
			Help: "Total number of application records created",
		},
	)

	ApplicationsDecided = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_applications_decided_total",
			Help: "Total number of application decisions by outcome",
		},
		[]string{"decision"},
	)

	PaymentsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_payments_created_total",
			Help: "Total number of payment records created",
		},
	)

	MatchScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "marketplace_match_score",
			Help:    "Distribution of computed match scores",
			Buckets: []float64{60, 70, 80, 90, 100},
		},
	)
)
