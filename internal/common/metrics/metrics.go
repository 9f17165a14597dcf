// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CampaignRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_requests_total",
			Help: "Total number of campaigns returned, by generation method",
		},
		[]string{"generation_method"},
	)

	StepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campaign_step_duration_seconds",
			Help:    "Duration of each pipeline step in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 45},
		},
		[]string{"step", "outcome"},
	)

	Tier1Failures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_tier1_failures_total",
			Help: "Total number of Tier-1 agent failures, by reason",
		},
		[]string{"reason"},
	)

	ProgressEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_progress_events_total",
			Help: "Total number of progress events emitted",
		},
		[]string{"event"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
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
)
