// Package domain — task types.
// A Task is the unit the user completes; completion is what feeds the
// celebration engine.
package domain

import "time"

// Priority ranks a task's importance and drives celebration escalation.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether p is a defined priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// CelebrationLevel maps a priority to the celebration escalation level.
// Milestone is never produced from priority — it is reserved for named
// achievements carrying a message.
func (p Priority) CelebrationLevel() CelebrationLevel {
	switch p {
	case PriorityLow:
		return LevelQuick
	case PriorityHigh, PriorityUrgent:
		return LevelImportant
	default:
		return LevelNormal
	}
}

// Task is a user to-do item.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Priority    Priority  `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
	DueAt       time.Time `json:"due_at,omitempty"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
}

// IsCompleted reports whether the task has been finished.
func (t *Task) IsCompleted() bool {
	return !t.CompletedAt.IsZero()
}

// CompletedOnTime reports whether the task was finished before its due
// date. Tasks without a due date always count as on time.
func (t *Task) CompletedOnTime() bool {
	if !t.IsCompleted() {
		return false
	}
	if t.DueAt.IsZero() {
		return true
	}
	return !t.CompletedAt.After(t.DueAt)
}
