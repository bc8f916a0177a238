// Package metrics defines the portal's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TokenRefreshAttempts counts individual refresh attempts by outcome.
	TokenRefreshAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_refresh_attempts_total",
			Help: "Token refresh attempts by status (success/failure)",
		},
		[]string{"status"},
	)

	// SessionInvalidations counts sessions forcibly cleared after refresh
	// exhaustion.
	SessionInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_invalidations_total",
			Help: "Sessions invalidated after exhausting refresh attempts",
		},
	)

	// APIClientRequests counts backend API calls by resource, method and
	// response class.
	APIClientRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_client_requests_total",
			Help: "Backend API requests by resource, method and status class",
		},
		[]string{"resource", "method", "status"},
	)

	// APIClientDuration tracks backend API call latency in seconds.
	APIClientDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_client_request_duration_seconds",
			Help:    "Backend API request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"resource"},
	)

	// BridgeOutcomes counts OAuth popup bridge completions.
	BridgeOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oauth_bridge_outcomes_total",
			Help: "OAuth popup bridge outcomes (success/fallback/error)",
		},
		[]string{"outcome"},
	)

	// DedupedRequests counts duplicate-request guard decisions.
	DedupedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deduped_requests_total",
			Help: "Duplicate-request guard results (fetched/shared/cached)",
		},
		[]string{"result"},
	)
)
