// Package metrics exposes Prometheus counters for the achievement
// engine. Counters are registered on the default registry and served
// at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "studyduel"

var (
	// ChecksTotal counts single-user achievement checks by result
	// (success/error).
	ChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "achievements",
			Name:      "checks_total",
			Help:      "Total single-user achievement checks by result",
		},
		[]string{"result"},
	)

	AwardsGrantedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "achievements",
			Name:      "awards_granted_total",
			Help:      "Total newly granted achievement awards",
		},
	)

	BatchRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "achievements",
			Name:      "batch_runs_total",
			Help:      "Total batch evaluation runs",
		},
	)

	BatchOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "achievements",
			Name:      "batch_outcomes_total",
			Help:      "Per-user outcomes inside batch runs (success/failure)",
		},
		[]string{"outcome"},
	)

	// LeaderboardTierServedTotal tracks which fallback tier answered a
	// leaderboard request (cache/stats/ledger/none).
	LeaderboardTierServedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "achievements",
			Name:      "leaderboard_tier_served_total",
			Help:      "Leaderboard requests answered per fallback tier",
		},
		[]string{"tier"},
	)

	PartialSnapshotsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "achievements",
			Name:      "partial_snapshots_total",
			Help:      "Stats snapshots degraded by an unreachable activity source",
		},
	)
)
