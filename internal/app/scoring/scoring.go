// Package scoring implements the XP economy: base awards per completed
// task, the exponential level curve, and persistence of lifetime XP.
package scoring

import (
	"fmt"
	"math"
	"strconv"

	"github.com/veloce-app/veloce/internal/domain"
	"github.com/veloce-app/veloce/internal/infra/metrics"
	"github.com/veloce-app/veloce/internal/infra/sqlite"
)

// MaxLevel caps the progression curve.
const MaxLevel = 50

// OnTimeBonus is awarded on top of the base XP when a task with a due
// date is completed before that date.
const OnTimeBonus = 5

// BaseXP returns the XP a completed task earns before any momentum
// multiplier is applied.
func BaseXP(p domain.Priority) int {
	switch p {
	case domain.PriorityLow:
		return 5
	case domain.PriorityHigh:
		return 20
	case domain.PriorityUrgent:
		return 30
	default:
		return 10
	}
}

// TaskXP returns the full pre-multiplier award for a completed task,
// including the on-time bonus when it applies.
func TaskXP(task domain.Task) int {
	xp := BaseXP(task.Priority)
	if !task.DueAt.IsZero() && task.CompletedOnTime() {
		xp += OnTimeBonus
	}
	return xp
}

// XPForLevel returns the cumulative XP required to reach a given level.
// Uses an exponential curve: 100 * 1.25^(level-1) for level >= 2.
func XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	return int64(100 * math.Pow(1.25, float64(level-1)))
}

// LevelForXP returns the level for a given XP amount.
func LevelForXP(xp int64) int {
	level := 1
	for level < MaxLevel {
		if xp < XPForLevel(level+1) {
			return level
		}
		level++
	}
	return MaxLevel
}

// Service manages the persistent XP total and derived level.
type Service struct {
	db *sqlite.DB
}

// NewService creates a scoring service.
func NewService(db *sqlite.DB) *Service {
	return &Service{db: db}
}

// CurrentLevel returns the user's current level and lifetime XP.
func (s *Service) CurrentLevel() (domain.UserLevel, error) {
	var ul domain.UserLevel

	xpStr, err := s.db.GetEngagement("xp_total")
	if err != nil {
		return ul, fmt.Errorf("get xp: %w", err)
	}
	if xpStr != "" {
		ul.CurrentXP, _ = strconv.ParseInt(xpStr, 10, 64)
	}

	ul.Level = LevelForXP(ul.CurrentXP)
	return ul, nil
}

// AddXP adds experience points and returns (newLevel, leveledUp, error).
func (s *Service) AddXP(amount int64, source domain.XPSource) (int, bool, error) {
	if amount <= 0 {
		return 0, false, fmt.Errorf("xp amount must be positive, got %d", amount)
	}

	current, err := s.CurrentLevel()
	if err != nil {
		return 0, false, err
	}

	oldLevel := current.Level
	newXP := current.CurrentXP + amount

	if err := s.db.SetEngagement("xp_total", strconv.FormatInt(newXP, 10)); err != nil {
		return 0, false, fmt.Errorf("save xp: %w", err)
	}

	newLevel := LevelForXP(newXP)
	if err := s.db.SetEngagement("level", strconv.Itoa(newLevel)); err != nil {
		return 0, false, fmt.Errorf("save level: %w", err)
	}

	metrics.XPEarned.WithLabelValues(string(source)).Add(float64(amount))
	metrics.UserLevel.Set(float64(newLevel))

	return newLevel, newLevel > oldLevel, nil
}

// XPToNextLevel returns how much more XP is needed for the next level.
// Returns 0 at the level cap.
func (s *Service) XPToNextLevel() (int64, error) {
	current, err := s.CurrentLevel()
	if err != nil {
		return 0, err
	}
	if current.Level >= MaxLevel {
		return 0, nil
	}
	return XPForLevel(current.Level+1) - current.CurrentXP, nil
}

// ProgressPct returns progress through the current level as 0-100.
func (s *Service) ProgressPct() (float64, error) {
	current, err := s.CurrentLevel()
	if err != nil {
		return 0, err
	}
	if current.Level >= MaxLevel {
		return 100, nil
	}
	floor := XPForLevel(current.Level)
	ceil := XPForLevel(current.Level + 1)
	if ceil == floor {
		return 100, nil
	}
	return 100 * float64(current.CurrentXP-floor) / float64(ceil-floor), nil
}
