// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partyplnr_chat_requests_total",
			Help: "Chat replies by outcome",
		},
		[]string{"outcome"},
	)

	ChatDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "partyplnr_chat_duration_seconds",
			Help:    "Time to produce a chat reply",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
		[]string{"outcome"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partyplnr_cache_lookups_total",
			Help: "Response cache lookups by result",
		},
		[]string{"backend", "result"},
	)

	FallbackCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partyplnr_fallback_calls_total",
			Help: "AI fallback calls by status",
		},
		[]string{"status"},
	)

	SessionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partyplnr_session_errors_total",
			Help: "Session store failures by operation",
		},
		[]string{"op"},
	)

	CatalogRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partyplnr_catalog_rows_total",
			Help: "Catalog rows seen at load by status",
		},
		[]string{"status"},
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

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)
)
