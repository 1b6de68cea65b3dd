// Package metrics exposes Prometheus collectors for the HTTP surface and the
// scoring domain. Collectors register against the default registry and are
// served by promhttp on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts requests by method, route and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goblet_http_requests_total",
		Help: "HTTP requests processed, labeled by method, route and status.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes request latency per route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "goblet_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// ScoreDeltasApplied counts score-ledger delta applications.
	ScoreDeltasApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goblet_score_deltas_applied_total",
		Help: "Score deltas applied to team totals.",
	})

	// QuafflesAwarded counts quaffle awards, labeled by house.
	QuafflesAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goblet_quaffles_awarded_total",
		Help: "Quaffles awarded, labeled by house.",
	}, []string{"house"})

	// LockRejections counts mutations rejected by the round lock gate.
	LockRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goblet_lock_rejections_total",
		Help: "Mutations rejected because the target round was locked.",
	})
)
