package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatherly_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// Invitations counts invitation attempts and their outcome (created|rejected).
	Invitations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatherly_invitations_total",
			Help: "Total number of event invitations",
		},
		[]string{"result"},
	)

	// ActiveSessions tracks active sessions (not expired/invalidated).
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gatherly_active_sessions",
			Help: "Number of active sessions",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gatherly_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
