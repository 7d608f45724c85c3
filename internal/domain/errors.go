package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Celebration construction errors — programmer-error class, rejected
	// at the boundary rather than clamped.
	ErrUnknownLevel            = errors.New("unknown celebration level")
	ErrNegativeXP              = errors.New("xp must be non-negative")
	ErrMultiplierTooLow        = errors.New("multiplier must be >= 1.0")
	ErrMilestoneWithoutMessage = errors.New("milestone celebration requires a message")

	// Task errors
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskAlreadyCompleted = errors.New("task already completed")
	ErrEmptyTitle           = errors.New("task title must not be empty")
	ErrInvalidPriority      = errors.New("invalid task priority")
)
