// Package celebration implements the Veloce celebration engine:
// the momentum tracker, the event dispatcher, and the subscriber-side
// display guard. The engine is pure in-memory coordination — it owns no
// storage and performs no I/O.
package celebration

import (
	"sync"

	"github.com/veloce-app/veloce/internal/domain"
	"github.com/veloce-app/veloce/internal/infra/metrics"
)

// Tracker maintains the consecutive-completion streak for the current
// session. Two states: dormant and active. Dormant→active happens exactly
// when the streak reaches domain.MomentumActivationThreshold; active→dormant
// only via Reset. Go is multi-threaded, so all state sits behind a mutex —
// callers may be HTTP handlers and background tickers at once.
type Tracker struct {
	mu       sync.Mutex
	state    domain.MomentumState
	onChange func(domain.MomentumChange)
}

// NewTracker creates a dormant tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// OnChange registers the single change consumer (the dispatcher's momentum
// fan-out). The callback runs outside the tracker lock.
func (t *Tracker) OnChange(fn func(domain.MomentumChange)) {
	t.mu.Lock()
	t.onChange = fn
	t.mu.Unlock()
}

// RecordQualifyingCompletion increments the streak. Crossing the
// activation threshold flips the tracker active and marks the change as an
// activation exactly once. Returns the updated state.
func (t *Tracker) RecordQualifyingCompletion() domain.MomentumState {
	t.mu.Lock()
	t.state.StreakCount++
	activated := false
	if !t.state.IsActive && t.state.StreakCount >= domain.MomentumActivationThreshold {
		t.state.IsActive = true
		activated = true
	}
	state := t.state
	fn := t.onChange
	t.mu.Unlock()

	t.publish(fn, domain.MomentumChange{State: state, Activated: activated})
	return state
}

// Reset returns the tracker to dormant with a zero streak. Called when a
// qualifying streak breaks — a day passes without a completion, or the
// user explicitly resets.
func (t *Tracker) Reset() domain.MomentumState {
	t.mu.Lock()
	t.state = domain.MomentumState{}
	state := t.state
	fn := t.onChange
	t.mu.Unlock()

	t.publish(fn, domain.MomentumChange{State: state})
	return state
}

// State returns a snapshot of the current momentum state.
func (t *Tracker) State() domain.MomentumState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Multiplier returns the current streak XP multiplier.
func (t *Tracker) Multiplier() float64 {
	return t.State().Multiplier()
}

func (t *Tracker) publish(fn func(domain.MomentumChange), change domain.MomentumChange) {
	metrics.MomentumStreak.Set(float64(change.State.StreakCount))
	metrics.MomentumActive.Set(boolGauge(change.State.IsActive))
	if fn != nil {
		fn(change)
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
