// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AlertSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_sends_total",
			Help: "Total number of alert send attempts by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	ProviderFailoversTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alert_provider_failovers_total",
			Help: "Number of times the gateway fell through to a lower-priority provider",
		},
	)

	RetryQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "alert_retry_queue_depth",
			Help: "Current number of messages waiting in the retry queue",
		},
	)

	RetriesExhaustedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alert_retries_exhausted_total",
			Help: "Messages dropped after reaching the retry attempt ceiling",
		},
	)

	AlertsSuppressedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alerts_suppressed_total",
			Help: "Alerts skipped by the frequency guard",
		},
	)

	SchedulePassDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "alert_schedule_pass_duration_seconds",
			Help: "Duration of one schedule pass in seconds",
		},
		[]string{"schedule"},
	)

	SchedulePassFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_schedule_pass_failures_total",
			Help: "Schedule passes aborted by a data-store query failure",
		},
		[]string{"schedule"},
	)
)
