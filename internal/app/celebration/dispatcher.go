package celebration

import (
	"sync"

	"github.com/veloce-app/veloce/internal/domain"
	"github.com/veloce-app/veloce/internal/infra/metrics"
)

// subscriberBuffer is the per-subscriber channel depth. Publishing never
// blocks: a subscriber that falls behind drops events, which matches the
// overlay contract — a newer event supersedes whatever was on screen.
const subscriberBuffer = 8

// DefaultAnchor is the fallback particle anchor used when a caller supplies
// no position. It models the screen center of the reference canvas.
var DefaultAnchor = domain.Position{X: 195, Y: 422}

// Dispatcher is the single broadcast point of the celebration engine.
// App logic announces celebration-worthy actions through Celebrate and its
// variants; any number of presentation-layer subscribers receive the
// resulting events. There is no package-level shared instance — the daemon
// constructs one Dispatcher and injects it.
type Dispatcher struct {
	mu       sync.Mutex
	tracker  *Tracker
	anchor   domain.Position
	subs     map[int]chan domain.CelebrationEvent
	momSubs  map[int]chan domain.MomentumChange
	nextID   int
}

// NewDispatcher creates a dispatcher bound to the given momentum tracker.
func NewDispatcher(tracker *Tracker) *Dispatcher {
	d := &Dispatcher{
		tracker: tracker,
		anchor:  DefaultAnchor,
		subs:    make(map[int]chan domain.CelebrationEvent),
		momSubs: make(map[int]chan domain.MomentumChange),
	}
	tracker.OnChange(d.publishMomentum)
	return d
}

// SetAnchor overrides the fallback position (screen-geometry provider).
func (d *Dispatcher) SetAnchor(p domain.Position) {
	d.mu.Lock()
	d.anchor = p
	d.mu.Unlock()
}

// ─── Publish Entry Points ───────────────────────────────────────────────────

// Celebrate announces a completed task. The celebration level follows the
// task's priority, the current momentum multiplier is applied to baseXP,
// and the completion counts toward the streak. The momentum multiplier is
// read before the streak increment, so the bonus a user sees reflects the
// streak they walked in with.
func (d *Dispatcher) Celebrate(task domain.Task, pos domain.Position, baseXP int, best *domain.PersonalBest) (domain.CelebrationEvent, error) {
	level := task.Priority.CelebrationLevel()
	mult := d.tracker.Multiplier()

	ev, err := domain.NewCelebrationEvent(level, baseXP, mult, d.resolve(pos), "", best)
	if err != nil {
		return domain.CelebrationEvent{}, err
	}

	d.tracker.RecordQualifyingCompletion()
	d.publish(ev)
	return ev, nil
}

// CelebrateAt is the low-level variant used for previews and non-task
// celebrations. It bypasses momentum entirely: fixed 1.0 multiplier, no
// streak increment.
func (d *Dispatcher) CelebrateAt(level domain.CelebrationLevel, xp int, pos domain.Position, message string) (domain.CelebrationEvent, error) {
	ev, err := domain.NewCelebrationEvent(level, xp, 1.0, d.resolve(pos), message, nil)
	if err != nil {
		return domain.CelebrationEvent{}, err
	}
	d.publish(ev)
	return ev, nil
}

// Milestone publishes a milestone-class celebration for a named
// achievement. Milestones take the distinct full-screen presentation path
// and always carry a message.
func (d *Dispatcher) Milestone(message string, xp int, pos domain.Position, best *domain.PersonalBest) (domain.CelebrationEvent, error) {
	ev, err := domain.NewCelebrationEvent(domain.LevelMilestone, xp, 1.0, d.resolve(pos), message, best)
	if err != nil {
		return domain.CelebrationEvent{}, err
	}
	d.publish(ev)
	return ev, nil
}

// ResetMomentum breaks the current streak.
func (d *Dispatcher) ResetMomentum() {
	d.tracker.Reset()
}

// Momentum returns a read-only snapshot of the momentum state.
func (d *Dispatcher) Momentum() domain.MomentumState {
	return d.tracker.State()
}

// ─── Subscription Surface ───────────────────────────────────────────────────

// SubscribeCelebrations registers a celebration-event listener. The
// returned cancel function must be called when the subscriber goes away.
func (d *Dispatcher) SubscribeCelebrations() (<-chan domain.CelebrationEvent, func()) {
	ch := make(chan domain.CelebrationEvent, subscriberBuffer)

	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.subs[id] = ch
	d.mu.Unlock()

	cancel := func() {
		d.mu.Lock()
		if _, ok := d.subs[id]; ok {
			delete(d.subs, id)
			close(ch)
		}
		d.mu.Unlock()
	}
	return ch, cancel
}

// SubscribeMomentum registers a momentum-change listener.
func (d *Dispatcher) SubscribeMomentum() (<-chan domain.MomentumChange, func()) {
	ch := make(chan domain.MomentumChange, subscriberBuffer)

	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.momSubs[id] = ch
	d.mu.Unlock()

	cancel := func() {
		d.mu.Lock()
		if _, ok := d.momSubs[id]; ok {
			delete(d.momSubs, id)
			close(ch)
		}
		d.mu.Unlock()
	}
	return ch, cancel
}

// ─── Internals ──────────────────────────────────────────────────────────────

// publish fans an event out to all celebration subscribers. Publish order
// follows call order; there is no cross-subscriber ordering guarantee.
func (d *Dispatcher) publish(ev domain.CelebrationEvent) {
	metrics.CelebrationsDispatched.WithLabelValues(string(ev.Level)).Inc()

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, ch := range d.subs {
		select {
		case ch <- ev:
		default: // subscriber lagging — drop, newest event wins anyway
		}
	}
}

func (d *Dispatcher) publishMomentum(change domain.MomentumChange) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, ch := range d.momSubs {
		select {
		case ch <- change:
		default:
		}
	}
}

// resolve substitutes the fallback anchor for unset positions.
func (d *Dispatcher) resolve(pos domain.Position) domain.Position {
	if pos.IsZero() {
		d.mu.Lock()
		defer d.mu.Unlock()
		return d.anchor
	}
	return pos
}
