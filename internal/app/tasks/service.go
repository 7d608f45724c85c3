// Package tasks implements the task lifecycle and the completion
// pipeline: persist the completion, award XP, update streaks and
// personal bests, fire the celebration, and check achievements.
package tasks

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/veloce-app/veloce/internal/app/achievement"
	"github.com/veloce-app/veloce/internal/app/celebration"
	"github.com/veloce-app/veloce/internal/app/scoring"
	"github.com/veloce-app/veloce/internal/domain"
	"github.com/veloce-app/veloce/internal/infra/metrics"
	"github.com/veloce-app/veloce/internal/infra/sqlite"
)

// Service coordinates task storage with scoring, achievements, and the
// celebration dispatcher.
type Service struct {
	db           *sqlite.DB
	scoring      *scoring.Service
	achievements *achievement.Service
	dispatcher   *celebration.Dispatcher

	now func() time.Time // injectable clock for tests
}

// NewService creates a task service.
func NewService(db *sqlite.DB, sc *scoring.Service, ach *achievement.Service, disp *celebration.Dispatcher) *Service {
	return &Service{
		db:           db,
		scoring:      sc,
		achievements: ach,
		dispatcher:   disp,
		now:          time.Now,
	}
}

// SetClock overrides the service clock. Tests only.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// CompletionResult summarizes everything a single completion triggered.
type CompletionResult struct {
	Task         domain.Task             `json:"task"`
	Event        domain.CelebrationEvent `json:"event"`
	XPAwarded    int                     `json:"xp_awarded"`
	NewLevel     int                     `json:"new_level"`
	LeveledUp    bool                    `json:"leveled_up"`
	Unlocked     []domain.AchievementDef `json:"unlocked,omitempty"`
	PersonalBest *domain.PersonalBest    `json:"personal_best,omitempty"`
}

// ─── Task CRUD ──────────────────────────────────────────────────────────────

// Add creates a new task. A zero due time means no due date.
func (s *Service) Add(title string, priority domain.Priority, due time.Time) (*domain.Task, error) {
	if title == "" {
		return nil, domain.ErrEmptyTitle
	}
	if !priority.Valid() {
		return nil, domain.ErrInvalidPriority
	}

	task := domain.Task{
		ID:        uuid.New().String(),
		Title:     title,
		Priority:  priority,
		CreatedAt: s.now(),
		DueAt:     due,
	}
	if err := s.db.InsertTask(task); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return &task, nil
}

// Get returns a single task by ID.
func (s *Service) Get(id string) (*domain.Task, error) {
	return s.db.GetTask(id)
}

// ListOpen returns open tasks ordered by due date.
func (s *Service) ListOpen() ([]domain.Task, error) {
	return s.db.ListOpenTasks()
}

// ListCompleted returns recently completed tasks, newest first.
func (s *Service) ListCompleted(limit int) ([]domain.Task, error) {
	return s.db.ListCompletedTasks(limit)
}

// Delete removes a task without completing it. No celebration fires.
func (s *Service) Delete(id string) error {
	return s.db.DeleteTask(id)
}

// ─── Completion Pipeline ────────────────────────────────────────────────────

// Complete marks a task done and runs the full reward pipeline. pos is
// the screen position the completing gesture happened at; a zero
// position falls back to the dispatcher anchor.
func (s *Service) Complete(id string, pos domain.Position) (*CompletionResult, error) {
	task, err := s.db.GetTask(id)
	if err != nil {
		return nil, err
	}
	if task.IsCompleted() {
		return nil, domain.ErrTaskAlreadyCompleted
	}

	at := s.now()
	if err := s.db.CompleteTask(id, at); err != nil {
		return nil, err
	}
	task.CompletedAt = at
	metrics.TasksCompleted.WithLabelValues(string(task.Priority)).Inc()

	if err := s.advanceDailyStreak(at); err != nil {
		return nil, err
	}

	// Personal best is judged on tasks completed today, including this one.
	completedToday, err := s.completedOn(at)
	if err != nil {
		return nil, err
	}
	prevBest, prevAt, err := s.db.PersonalBestInfo("tasks_in_day")
	if err != nil {
		return nil, err
	}
	best, err := s.db.RecordPersonalBest("tasks_in_day", completedToday, at)
	if err != nil {
		return nil, fmt.Errorf("record personal best: %w", err)
	}
	// Banner only when beating a record set on an earlier day. The very
	// first day has no record to beat, and a record already raised today
	// would otherwise banner on every further completion. Both sides of
	// the day comparison use the completion's zone.
	if best != nil && (prevBest == 0 || prevAt.In(at.Location()).Format(dayFormat) == at.Format(dayFormat)) {
		best = nil
	}

	// The multiplier the event carries is the momentum state before this
	// completion counted toward the streak.
	ev, err := s.dispatcher.Celebrate(*task, pos, scoring.TaskXP(*task), best)
	if err != nil {
		return nil, fmt.Errorf("celebrate: %w", err)
	}

	awarded := ev.DisplayXP()
	newLevel, leveledUp, err := s.scoring.AddXP(int64(awarded), domain.XPTaskCompleted)
	if err != nil {
		return nil, err
	}
	if leveledUp {
		msg := fmt.Sprintf("Level %d Reached!", newLevel)
		if _, err := s.dispatcher.Milestone(msg, 0, pos, nil); err != nil {
			return nil, err
		}
	}

	stats, err := s.Stats()
	if err != nil {
		return nil, err
	}
	unlocked, err := s.achievements.CheckAndUnlock(stats)
	if err != nil {
		return nil, fmt.Errorf("check achievements: %w", err)
	}
	for _, def := range unlocked {
		if _, err := s.dispatcher.Milestone(def.Message, def.RewardXP, pos, nil); err != nil {
			return nil, err
		}
		if def.RewardXP > 0 {
			lvl, up, err := s.scoring.AddXP(int64(def.RewardXP), domain.XPAchievement)
			if err != nil {
				return nil, err
			}
			newLevel = lvl
			leveledUp = leveledUp || up
		}
	}

	return &CompletionResult{
		Task:         *task,
		Event:        ev,
		XPAwarded:    awarded,
		NewLevel:     newLevel,
		LeveledUp:    leveledUp,
		Unlocked:     unlocked,
		PersonalBest: best,
	}, nil
}

// ─── Streaks & Stats ────────────────────────────────────────────────────────

const dayFormat = "2006-01-02"

// advanceDailyStreak updates the day-over-day streak counter. Same-day
// completions leave it untouched; a completion on the day after the
// last one extends it; anything later restarts at 1.
func (s *Service) advanceDailyStreak(at time.Time) error {
	today := at.Format(dayFormat)
	lastDay, err := s.db.GetEngagement("last_completion_day")
	if err != nil {
		return fmt.Errorf("get last completion day: %w", err)
	}
	if lastDay == today {
		return nil
	}

	streak := 1
	yesterday := at.AddDate(0, 0, -1).Format(dayFormat)
	if lastDay == yesterday {
		prev, _ := strconv.Atoi(mustGet(s.db, "daily_streak"))
		streak = prev + 1
	}

	if err := s.db.SetEngagement("daily_streak", strconv.Itoa(streak)); err != nil {
		return fmt.Errorf("save streak: %w", err)
	}
	if err := s.db.SetEngagement("last_completion_day", today); err != nil {
		return fmt.Errorf("save last completion day: %w", err)
	}
	return nil
}

// CheckStreakBreak resets the daily streak and the momentum tracker if
// a full calendar day has passed with no completions. Called on startup
// and from the daemon's daily ticker.
func (s *Service) CheckStreakBreak() error {
	lastDay, err := s.db.GetEngagement("last_completion_day")
	if err != nil {
		return fmt.Errorf("get last completion day: %w", err)
	}
	if lastDay == "" {
		return nil // nothing ever completed, nothing to break
	}

	now := s.now()
	today := now.Format(dayFormat)
	yesterday := now.AddDate(0, 0, -1).Format(dayFormat)
	if lastDay == today || lastDay == yesterday {
		return nil
	}

	if err := s.db.SetEngagement("daily_streak", "0"); err != nil {
		return fmt.Errorf("reset streak: %w", err)
	}
	s.dispatcher.ResetMomentum()
	return nil
}

// Stats builds the snapshot fed to achievement predicates and the API.
func (s *Service) Stats() (domain.UserStats, error) {
	var stats domain.UserStats

	total, err := s.db.CountCompleted()
	if err != nil {
		return stats, err
	}
	stats.TasksCompleted = total

	today, err := s.completedOn(s.now())
	if err != nil {
		return stats, err
	}
	stats.CompletedToday = today

	stats.BestDay, err = s.db.PersonalBest("tasks_in_day")
	if err != nil {
		return stats, err
	}

	streakStr, err := s.db.GetEngagement("daily_streak")
	if err != nil {
		return stats, err
	}
	if streakStr != "" {
		stats.CurrentStreak, _ = strconv.Atoi(streakStr)
	}

	ul, err := s.scoring.CurrentLevel()
	if err != nil {
		return stats, err
	}
	stats.TotalXP = ul.CurrentXP
	stats.Level = ul.Level

	return stats, nil
}

// completedOn counts completions within the calendar day containing t.
func (s *Service) completedOn(t time.Time) (int, error) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return s.db.CountCompletedBetween(start, start.AddDate(0, 0, 1))
}

func mustGet(db *sqlite.DB, key string) string {
	v, _ := db.GetEngagement(key)
	return v
}
