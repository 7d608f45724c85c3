package celebration

import (
	"sync"
	"time"

	"github.com/veloce-app/veloce/internal/domain"
)

// Display is the subscriber-side auto-dismiss guard. It holds at most one
// celebration at a time; showing a new event supersedes whatever is held.
// Each Show schedules a dismissal after the event's display duration, and
// the dismissal clears the slot only if the held event's ID still matches —
// a late timer from a superseded event no-ops instead of clobbering its
// successor. Milestone events never self-expire; the overlay dismisses them
// explicitly via Clear.
type Display struct {
	mu      sync.Mutex
	current *domain.CelebrationEvent
	timer   *time.Timer
}

// NewDisplay creates an empty display slot.
func NewDisplay() *Display {
	return &Display{}
}

// Show replaces the currently held event and schedules its auto-dismissal
// after the level's display duration.
func (v *Display) Show(ev domain.CelebrationEvent) {
	v.ShowFor(ev, ev.Level.Duration())
}

// ShowFor is Show with an explicit hold duration. A non-positive duration
// pins the event until the next Show or Clear (the milestone path).
func (v *Display) ShowFor(ev domain.CelebrationEvent, hold time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	v.current = &ev

	if hold > 0 {
		id := ev.ID
		v.timer = time.AfterFunc(hold, func() { v.clearIf(id) })
	}
}

// Current returns a copy of the held event, or nil if the slot is empty.
func (v *Display) Current() *domain.CelebrationEvent {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current == nil {
		return nil
	}
	ev := *v.current
	return &ev
}

// Clear empties the slot unconditionally.
func (v *Display) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	v.current = nil
}

// clearIf empties the slot only if the held event still matches id.
func (v *Display) clearIf(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current != nil && v.current.ID == id {
		v.current = nil
		v.timer = nil
	}
}
