// Package domain holds the pure types of the Veloce celebration engine.
// A celebration is a transient reward signal — it carries XP and
// presentation metadata, lives for its level's display duration, and is
// never persisted.
package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// ─── Celebration Levels ─────────────────────────────────────────────────────

// CelebrationLevel orders celebrations by visual intensity.
type CelebrationLevel string

const (
	LevelQuick     CelebrationLevel = "quick"
	LevelNormal    CelebrationLevel = "normal"
	LevelImportant CelebrationLevel = "important"
	LevelMilestone CelebrationLevel = "milestone"
)

// Valid reports whether l is one of the defined levels.
func (l CelebrationLevel) Valid() bool {
	switch l {
	case LevelQuick, LevelNormal, LevelImportant, LevelMilestone:
		return true
	}
	return false
}

// Intensity returns the ordering rank of the level (quick=0 … milestone=3).
func (l CelebrationLevel) Intensity() int {
	switch l {
	case LevelQuick:
		return 0
	case LevelNormal:
		return 1
	case LevelImportant:
		return 2
	case LevelMilestone:
		return 3
	}
	return -1
}

// DefaultXP returns the base XP awarded for a celebration of this level
// when the caller supplies no explicit amount.
func (l CelebrationLevel) DefaultXP() int {
	switch l {
	case LevelQuick:
		return 5
	case LevelNormal:
		return 10
	case LevelImportant:
		return 25
	case LevelMilestone:
		return 100
	}
	return 0
}

// ParticleCount returns the default particle burst size for this level.
func (l CelebrationLevel) ParticleCount() int {
	switch l {
	case LevelQuick:
		return 12
	case LevelNormal:
		return 24
	case LevelImportant:
		return 48
	case LevelMilestone:
		return 120
	}
	return 0
}

// Duration returns how long an overlay holds a celebration of this level
// before auto-dismissal.
func (l CelebrationLevel) Duration() time.Duration {
	switch l {
	case LevelQuick:
		return 1500 * time.Millisecond
	case LevelNormal:
		return 2500 * time.Millisecond
	case LevelImportant:
		return 3500 * time.Millisecond
	case LevelMilestone:
		return 5 * time.Second
	}
	return 0
}

// ─── Position ───────────────────────────────────────────────────────────────

// Position is a screen-space anchor for particle effects.
// The zero value means "unset" — the dispatcher substitutes its fallback
// anchor (screen center) for unset positions.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsZero reports whether the position was left unset.
func (p Position) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

// ─── Celebration Event ──────────────────────────────────────────────────────

// PersonalBest records that the triggering action beat a prior maximum.
// Detection happens in the task subsystem; the dispatcher only carries it.
type PersonalBest struct {
	Kind          string `json:"kind"`
	NewValue      int    `json:"new_value"`
	PreviousValue int    `json:"previous_value"`
}

// CelebrationEvent describes one celebration occurrence. All fields are
// fixed at construction; subscribers de-duplicate by ID.
type CelebrationEvent struct {
	ID           string           `json:"id"`
	Level        CelebrationLevel `json:"level"`
	XPEarned     int              `json:"xp_earned"`
	Multiplier   float64          `json:"multiplier"`
	Position     Position         `json:"position"`
	Message      string           `json:"message,omitempty"`
	PersonalBest *PersonalBest    `json:"personal_best,omitempty"`
	FiredAt      time.Time        `json:"fired_at"`
}

// NewCelebrationEvent validates inputs and builds an event with a fresh ID.
// Invalid input is a programmer error at the call site, not a runtime
// condition — there is no clamping.
func NewCelebrationEvent(level CelebrationLevel, xp int, multiplier float64, pos Position, message string, best *PersonalBest) (CelebrationEvent, error) {
	if !level.Valid() {
		return CelebrationEvent{}, ErrUnknownLevel
	}
	if xp < 0 {
		return CelebrationEvent{}, ErrNegativeXP
	}
	if multiplier < 1.0 {
		return CelebrationEvent{}, ErrMultiplierTooLow
	}
	if level == LevelMilestone && message == "" {
		return CelebrationEvent{}, ErrMilestoneWithoutMessage
	}
	return CelebrationEvent{
		ID:           uuid.New().String(),
		Level:        level,
		XPEarned:     xp,
		Multiplier:   multiplier,
		Position:     pos,
		Message:      message,
		PersonalBest: best,
		FiredAt:      time.Now(),
	}, nil
}

// DisplayXP is the XP figure shown to the user: round(xpEarned × multiplier).
func (e CelebrationEvent) DisplayXP() int {
	return int(math.Round(float64(e.XPEarned) * e.Multiplier))
}

// HasMultiplier reports whether a bonus multiplier applies.
func (e CelebrationEvent) HasMultiplier() bool {
	return e.Multiplier > 1.0
}

// IsPersonalBest reports whether the event carries a personal-best record.
func (e CelebrationEvent) IsPersonalBest() bool {
	return e.PersonalBest != nil
}

// ─── Momentum ───────────────────────────────────────────────────────────────

// MomentumActivationThreshold is the streak count at which momentum
// switches from dormant to active.
const MomentumActivationThreshold = 3

// MomentumState is a snapshot of the consecutive-completion streak.
// The tracker owns the mutable state; everyone else sees copies.
type MomentumState struct {
	StreakCount int  `json:"streak_count"`
	IsActive    bool `json:"is_active"`
}

// Multiplier returns the XP bonus multiplier for this momentum state.
// +5% per consecutive completion while active, capped at +50%.
func (m MomentumState) Multiplier() float64 {
	if !m.IsActive {
		return 1.0
	}
	bonus := float64(m.StreakCount) * 0.05
	if bonus > 0.50 {
		bonus = 0.50
	}
	return 1.0 + bonus
}

// MomentumChange is published whenever momentum state mutates.
// Activated is true only on the dormant→active transition, so the one-time
// activation banner does not re-fire on later increments.
type MomentumChange struct {
	State     MomentumState `json:"state"`
	Activated bool          `json:"activated"`
}
