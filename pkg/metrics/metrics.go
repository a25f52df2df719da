package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InvitationExchanges counts invitation code exchanges by result (success|invalid|error).
	InvitationExchanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentauth_invitation_exchanges_total",
			Help: "Total number of invitation code exchanges",
		},
		[]string{"result"},
	)

	// SessionValidations counts session token checks by result (valid|invalid|error).
	SessionValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentauth_session_validations_total",
			Help: "Total number of session validations",
		},
		[]string{"result"},
	)

	Logouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agentauth_logouts_total",
			Help: "Total number of logout requests served",
		},
	)

	// ExpiredSessionsPurged counts rows removed by the maintenance job.
	ExpiredSessionsPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agentauth_expired_sessions_purged_total",
			Help: "Total number of expired sessions removed by maintenance",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agentauth_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

const (
	ResultSuccess = "success"
	ResultValid   = "valid"
	ResultInvalid = "invalid"
	ResultError   = "error"
)
