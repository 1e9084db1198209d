package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	AuthAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portal", Name: "auth_attempts_total", Help: "Authentication attempts by operation (register|login|refresh|logout) and outcome (ok|error)."},
		[]string{"operation", "outcome"},
	)
	TokenRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portal", Name: "token_rejections_total", Help: "Bearer tokens rejected by the session boundary, by reason (missing|invalid)."},
		[]string{"reason"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portal", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portal", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	RequestTimeouts = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "portal", Name: "request_timeouts_total", Help: "Requests aborted by the idle-request timeout."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(AuthAttempts)
	reg.MustRegister(TokenRejections)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(RequestTimeouts)
}
