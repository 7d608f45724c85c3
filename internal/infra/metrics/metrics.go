// Package metrics provides Prometheus metrics for Veloce — counters and
// gauges for celebrations, momentum, XP, tasks, and health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Celebrations ───────────────────────────────────────────────────────────

// CelebrationsDispatched counts published celebration events by level.
var CelebrationsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "veloce",
	Name:      "celebrations_dispatched_total",
	Help:      "Total celebration events published, by level.",
}, []string{"level"})

// FeedSubscribers tracks currently connected live-feed subscribers.
var FeedSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "veloce",
	Name:      "feed_subscribers",
	Help:      "Number of connected celebration feed subscribers.",
})

// ─── Momentum ───────────────────────────────────────────────────────────────

// MomentumStreak tracks the current consecutive-completion streak.
var MomentumStreak = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "veloce",
	Name:      "momentum_streak_count",
	Help:      "Current consecutive qualifying completions.",
})

// MomentumActive tracks whether momentum is active (1) or dormant (0).
var MomentumActive = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "veloce",
	Name:      "momentum_active",
	Help:      "Momentum state (1=active, 0=dormant).",
})

// ─── Tasks & XP ─────────────────────────────────────────────────────────────

// TasksCompleted counts completed tasks by priority.
var TasksCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "veloce",
	Name:      "tasks_completed_total",
	Help:      "Total completed tasks, by priority.",
}, []string{"priority"})

// XPEarned counts XP awarded by source.
var XPEarned = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "veloce",
	Name:      "xp_earned_total",
	Help:      "Total XP awarded, by source.",
}, []string{"source"})

// AchievementsUnlocked counts achievement unlocks.
var AchievementsUnlocked = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "veloce",
	Name:      "achievements_unlocked_total",
	Help:      "Total achievements unlocked.",
})

// UserLevel tracks the user's current level.
var UserLevel = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "veloce",
	Name:      "user_level",
	Help:      "Current user level.",
})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "veloce",
	Name:      "health_check_status",
	Help:      "Health check result per component (1=healthy, 0=unhealthy).",
}, []string{"check"})
