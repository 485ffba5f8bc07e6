package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "absence_notifier_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	// JobRuns counts finished runs by outcome (success, noop, skipped, error).
	JobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "absence_notifier_job_runs_total",
			Help: "Number of reconciliation job runs by outcome",
		},
		[]string{"outcome"},
	)

	JobDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "absence_notifier_job_duration_seconds",
			Help:    "Duration of reconciliation job runs",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Notifications counts per-recipient outcomes (sent, failed, pending).
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "absence_notifier_notifications_total",
			Help: "Per-recipient SMS outcomes",
		},
		[]string{"status"},
	)

	ResultMismatches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "absence_notifier_gateway_result_mismatch_total",
			Help: "Dispatches where the gateway returned a different number of results than recipients",
		},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCount, JobRuns, JobDuration, Notifications, ResultMismatches)
	})
}
