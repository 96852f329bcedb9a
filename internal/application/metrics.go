package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// commitsTotal counts history commits by action
	commitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "growth_dashboard_commits_total",
		Help: "History commits by action",
	}, []string{"action"})

	// noopMutationsTotal counts mutations that matched nothing
	noopMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "growth_dashboard_noop_mutations_total",
		Help: "Mutations that matched no record and were not committed",
	}, []string{"action"})

	// historyNavigationTotal counts undo/redo by outcome
	historyNavigationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "growth_dashboard_history_navigation_total",
		Help: "Undo and redo requests by direction and result",
	}, []string{"direction", "result"})

	// syncOperationsTotal counts remote record store calls
	syncOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "growth_dashboard_sync_operations_total",
		Help: "Remote record store operations by op and result",
	}, []string{"op", "result"})

	// syncDuration tracks remote record store latency
	syncDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "growth_dashboard_sync_duration_seconds",
		Help:    "Remote record store operation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
	}, []string{"op"})

	// insightRequestsTotal counts AI insight requests by outcome
	insightRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "growth_dashboard_insight_requests_total",
		Help: "AI insight requests by kind and outcome",
	}, []string{"kind", "outcome"})
)
