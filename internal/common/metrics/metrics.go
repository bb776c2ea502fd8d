// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrchestrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orchestrations_total",
			Help: "Total number of orchestrated queries by outcome",
		},
		[]string{"status"},
	)

	OrchestrationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "orchestration_duration_seconds",
			Help:    "End-to-end duration of one orchestrated query",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	AngleResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "angle_resolutions_total",
			Help: "Total number of resolved angle branches by outcome",
		},
		[]string{"status"},
	)

	PollAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "angle_poll_attempts",
			Help:    "Message fetches needed before a branch reached a terminal state",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 40, 60},
		},
	)

	CapabilityRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "capability_requests_total",
			Help: "Outbound requests to remote capabilities",
		},
		[]string{"capability", "operation", "status"},
	)

	ActiveBranches = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "angle_branches_active",
			Help: "Number of angle branches currently in flight",
		},
	)
)
