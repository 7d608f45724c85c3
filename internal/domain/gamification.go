// Package domain — gamification types.
// XP, levels, and the achievement catalog that feeds milestone
// celebrations.
package domain

import "time"

// ─── Level / XP Types ───────────────────────────────────────────────────────

// UserLevel represents the user's current level and XP progress.
type UserLevel struct {
	Level     int   `json:"level"`
	CurrentXP int64 `json:"current_xp"`
}

// XPSource categorizes how XP was earned.
type XPSource string

const (
	XPTaskCompleted XPSource = "TASK_COMPLETED"
	XPAchievement   XPSource = "ACHIEVEMENT"
	XPMilestone     XPSource = "MILESTONE"
)

// ─── Achievement Types ──────────────────────────────────────────────────────

// AchievementCategory groups achievements by theme.
type AchievementCategory string

const (
	CatFirstSteps AchievementCategory = "first_steps"
	CatVolume     AchievementCategory = "volume"
	CatStreaks    AchievementCategory = "streaks"
	CatLevels     AchievementCategory = "levels"
)

// AchievementDef defines a single achievement. Message is the milestone
// overlay text shown when the achievement unlocks.
type AchievementDef struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Category  AchievementCategory  `json:"category"`
	Message   string               `json:"message"`
	RewardXP  int                  `json:"reward_xp"`
	Predicate func(UserStats) bool `json:"-"`
}

// UnlockedAchievement records when an achievement was earned.
type UnlockedAchievement struct {
	ID         string    `json:"id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// UserStats is a snapshot of user state fed to achievement predicates.
type UserStats struct {
	TasksCompleted int   `json:"tasks_completed"`
	CompletedToday int   `json:"completed_today"`
	BestDay        int   `json:"best_day"`
	CurrentStreak  int   `json:"current_streak"`
	TotalXP        int64 `json:"total_xp"`
	Level          int   `json:"level"`
}
