// Package achievement implements the achievement system: stat-based
// predicates evaluated after each completion, with milestone messages
// surfaced through the celebration feed.
package achievement

import (
	"time"

	"github.com/veloce-app/veloce/internal/domain"
	"github.com/veloce-app/veloce/internal/infra/metrics"
	"github.com/veloce-app/veloce/internal/infra/sqlite"
)

// Service manages the achievement catalog and unlock state.
type Service struct {
	db          *sqlite.DB
	definitions []domain.AchievementDef
}

// NewService creates an achievement service with the full catalog.
func NewService(db *sqlite.DB) *Service {
	return &Service{
		db:          db,
		definitions: Catalog(),
	}
}

// CheckAndUnlock evaluates all achievements against current stats.
// Returns newly unlocked achievements (idempotent — already-unlocked
// are skipped).
func (a *Service) CheckAndUnlock(stats domain.UserStats) ([]domain.AchievementDef, error) {
	var newlyUnlocked []domain.AchievementDef

	for _, def := range a.definitions {
		unlocked, err := a.db.IsAchievementUnlocked(def.ID)
		if err != nil {
			return nil, err
		}
		if unlocked {
			continue
		}

		if def.Predicate != nil && def.Predicate(stats) {
			isNew, err := a.db.UnlockAchievement(def.ID, time.Now())
			if err != nil {
				return nil, err
			}
			if isNew {
				newlyUnlocked = append(newlyUnlocked, def)
				metrics.AchievementsUnlocked.Inc()
			}
		}
	}

	return newlyUnlocked, nil
}

// ListUnlocked returns all achievements the user has earned.
func (a *Service) ListUnlocked() ([]domain.UnlockedAchievement, error) {
	return a.db.ListUnlockedAchievements()
}

// UnlockedCount returns how many achievements are unlocked.
func (a *Service) UnlockedCount() (int, error) {
	return a.db.UnlockedAchievementCount()
}

// TotalCount returns the total number of defined achievements.
func (a *Service) TotalCount() int {
	return len(a.definitions)
}

// Definitions returns all achievement definitions (for display).
func (a *Service) Definitions() []domain.AchievementDef {
	return a.definitions
}

// ─── Achievement Catalog ────────────────────────────────────────────────────

// Catalog returns the full achievement catalog.
func Catalog() []domain.AchievementDef {
	return []domain.AchievementDef{
		// ── First Steps ────────────────────────────────────────────────
		{
			ID: "first_complete", Name: "First Step", Category: domain.CatFirstSteps,
			Message: "First Task Complete!", RewardXP: 25,
			Predicate: func(s domain.UserStats) bool { return s.TasksCompleted >= 1 },
		},
		{
			ID: "five_in_a_day", Name: "Warming Up", Category: domain.CatFirstSteps,
			Message: "5 Tasks in One Day!", RewardXP: 50,
			Predicate: func(s domain.UserStats) bool { return s.CompletedToday >= 5 },
		},

		// ── Volume ─────────────────────────────────────────────────────
		{
			ID: "tasks_10", Name: "Getting Things Done", Category: domain.CatVolume,
			Message: "10 Tasks Complete!", RewardXP: 50,
			Predicate: func(s domain.UserStats) bool { return s.TasksCompleted >= 10 },
		},
		{
			ID: "tasks_50", Name: "Momentum Builder", Category: domain.CatVolume,
			Message: "50 Tasks Complete!", RewardXP: 150,
			Predicate: func(s domain.UserStats) bool { return s.TasksCompleted >= 50 },
		},
		{
			ID: "tasks_100", Name: "Centurion", Category: domain.CatVolume,
			Message: "100 Tasks Complete!", RewardXP: 300,
			Predicate: func(s domain.UserStats) bool { return s.TasksCompleted >= 100 },
		},
		{
			ID: "tasks_1000", Name: "Machine", Category: domain.CatVolume,
			Message: "1000 Tasks Complete!", RewardXP: 1000,
			Predicate: func(s domain.UserStats) bool { return s.TasksCompleted >= 1000 },
		},
		{
			ID: "best_day_10", Name: "Personal Best", Category: domain.CatVolume,
			Message: "New Record: 10 Tasks in a Day!", RewardXP: 100,
			Predicate: func(s domain.UserStats) bool { return s.BestDay >= 10 },
		},

		// ── Streaks ────────────────────────────────────────────────────
		{
			ID: "streak_7", Name: "Week Warrior", Category: domain.CatStreaks,
			Message: "7-Day Streak!", RewardXP: 100,
			Predicate: func(s domain.UserStats) bool { return s.CurrentStreak >= 7 },
		},
		{
			ID: "streak_30", Name: "Monthly Machine", Category: domain.CatStreaks,
			Message: "30-Day Streak!", RewardXP: 500,
			Predicate: func(s domain.UserStats) bool { return s.CurrentStreak >= 30 },
		},

		// ── Levels ─────────────────────────────────────────────────────
		{
			ID: "level_5", Name: "Rising Star", Category: domain.CatLevels,
			Message: "Level 5 Reached!", RewardXP: 100,
			Predicate: func(s domain.UserStats) bool { return s.Level >= 5 },
		},
		{
			ID: "level_10", Name: "Veteran", Category: domain.CatLevels,
			Message: "Level 10 Reached!", RewardXP: 250,
			Predicate: func(s domain.UserStats) bool { return s.Level >= 10 },
		},
		{
			ID: "level_25", Name: "Elite", Category: domain.CatLevels,
			Message: "Level 25 Reached!", RewardXP: 750,
			Predicate: func(s domain.UserStats) bool { return s.Level >= 25 },
		},
	}
}
