package celebration_test

import (
	"testing"
	"time"

	"github.com/veloce-app/veloce/internal/app/celebration"
	"github.com/veloce-app/veloce/internal/domain"
)

func newEngine() (*celebration.Tracker, *celebration.Dispatcher) {
	tr := celebration.NewTracker()
	return tr, celebration.NewDispatcher(tr)
}

func testTask(p domain.Priority) domain.Task {
	return domain.Task{
		ID:        "task-1",
		Title:     "Write report",
		Priority:  p,
		CreatedAt: time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Momentum Tracker Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestTracker_ActivatesAtThreshold(t *testing.T) {
	tr := celebration.NewTracker()

	for i := 1; i <= 2; i++ {
		state := tr.RecordQualifyingCompletion()
		if state.IsActive {
			t.Fatalf("active after %d completions, threshold is 3", i)
		}
	}

	state := tr.RecordQualifyingCompletion()
	if state.StreakCount != 3 || !state.IsActive {
		t.Errorf("expected {3, active}, got %+v", state)
	}

	// 4th call — stays active, no re-activation
	state = tr.RecordQualifyingCompletion()
	if state.StreakCount != 4 || !state.IsActive {
		t.Errorf("expected {4, active}, got %+v", state)
	}
}

func TestTracker_Reset(t *testing.T) {
	tr := celebration.NewTracker()
	for i := 0; i < 5; i++ {
		tr.RecordQualifyingCompletion()
	}

	state := tr.Reset()
	if state.StreakCount != 0 || state.IsActive {
		t.Errorf("expected {0, dormant} after reset, got %+v", state)
	}

	// Reset from dormant is also fine
	state = tr.Reset()
	if state.StreakCount != 0 || state.IsActive {
		t.Errorf("reset must be idempotent, got %+v", state)
	}
}

func TestTracker_ActivationNotifiedOnce(t *testing.T) {
	tr := celebration.NewTracker()
	var changes []domain.MomentumChange
	tr.OnChange(func(c domain.MomentumChange) { changes = append(changes, c) })

	for i := 0; i < 5; i++ {
		tr.RecordQualifyingCompletion()
	}
	tr.Reset()

	if len(changes) != 6 {
		t.Fatalf("expected 6 change notifications, got %d", len(changes))
	}
	activations := 0
	for _, c := range changes {
		if c.Activated {
			activations++
		}
	}
	if activations != 1 {
		t.Errorf("expected exactly 1 activation, got %d", activations)
	}
	if !changes[2].Activated {
		t.Error("activation should fire on the 3rd completion")
	}
	last := changes[len(changes)-1]
	if last.State.StreakCount != 0 || last.State.IsActive {
		t.Errorf("final change should be the reset, got %+v", last.State)
	}
}

func TestTracker_MultiplierDormantVsActive(t *testing.T) {
	tr := celebration.NewTracker()
	if m := tr.Multiplier(); m != 1.0 {
		t.Errorf("fresh tracker multiplier = %.2f, want 1.0", m)
	}

	tr.RecordQualifyingCompletion()
	tr.RecordQualifyingCompletion()
	if m := tr.Multiplier(); m != 1.0 {
		t.Errorf("dormant multiplier = %.2f, want 1.0", m)
	}

	tr.RecordQualifyingCompletion() // activates at 3
	if m := tr.Multiplier(); m != 1.15 {
		t.Errorf("active multiplier at streak 3 = %.2f, want 1.15", m)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Dispatcher Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestDispatcher_CelebrateAt(t *testing.T) {
	_, d := newEngine()

	ev, err := d.CelebrateAt(domain.LevelImportant, 50, domain.Position{X: 100, Y: 200}, "")
	if err != nil {
		t.Fatalf("celebrate: %v", err)
	}
	if ev.Level != domain.LevelImportant || ev.XPEarned != 50 {
		t.Errorf("unexpected event: %+v", ev)
	}
	if ev.Multiplier != 1.0 || ev.DisplayXP() != 50 {
		t.Errorf("low-level variant must bypass momentum: mult=%.2f display=%d", ev.Multiplier, ev.DisplayXP())
	}
	if ev.Message != "" || ev.PersonalBest != nil {
		t.Error("expected no message and no personal best")
	}
	if (ev.Position != domain.Position{X: 100, Y: 200}) {
		t.Errorf("position not preserved: %+v", ev.Position)
	}

	// Must not touch the streak
	if m := d.Momentum(); m.StreakCount != 0 {
		t.Errorf("CelebrateAt incremented streak: %+v", m)
	}
}

func TestDispatcher_CelebrateEscalatesByPriority(t *testing.T) {
	_, d := newEngine()

	ev, err := d.Celebrate(testTask(domain.PriorityHigh), domain.Position{X: 10, Y: 10}, 20, nil)
	if err != nil {
		t.Fatalf("celebrate: %v", err)
	}
	if ev.Level != domain.LevelImportant {
		t.Errorf("high priority should escalate to important, got %s", ev.Level)
	}

	ev, _ = d.Celebrate(testTask(domain.PriorityLow), domain.Position{X: 10, Y: 10}, 5, nil)
	if ev.Level != domain.LevelQuick {
		t.Errorf("low priority should map to quick, got %s", ev.Level)
	}
}

func TestDispatcher_CelebrateCountsTowardStreak(t *testing.T) {
	_, d := newEngine()

	for i := 0; i < 3; i++ {
		if _, err := d.Celebrate(testTask(domain.PriorityNormal), domain.Position{}, 10, nil); err != nil {
			t.Fatalf("celebrate %d: %v", i, err)
		}
	}
	m := d.Momentum()
	if m.StreakCount != 3 || !m.IsActive {
		t.Errorf("expected {3, active} after 3 celebrations, got %+v", m)
	}
}

func TestDispatcher_StreakMultiplierApplied(t *testing.T) {
	_, d := newEngine()

	// Build a 10-completion streak: multiplier caps at 1.5.
	for i := 0; i < 10; i++ {
		_, _ = d.Celebrate(testTask(domain.PriorityNormal), domain.Position{}, 10, nil)
	}

	ev, err := d.Celebrate(testTask(domain.PriorityNormal), domain.Position{}, 10, nil)
	if err != nil {
		t.Fatalf("celebrate: %v", err)
	}
	if ev.Multiplier != 1.5 {
		t.Errorf("expected capped multiplier 1.5, got %.2f", ev.Multiplier)
	}
	if ev.DisplayXP() != 15 {
		t.Errorf("baseXP 10 at ×1.5 should display 15, got %d", ev.DisplayXP())
	}
	if !ev.HasMultiplier() {
		t.Error("expected bonus multiplier flag")
	}
}

func TestDispatcher_FallbackAnchor(t *testing.T) {
	_, d := newEngine()

	ev, _ := d.CelebrateAt(domain.LevelNormal, 10, domain.Position{}, "")
	if ev.Position != celebration.DefaultAnchor {
		t.Errorf("unset position should fall back to screen center, got %+v", ev.Position)
	}

	d.SetAnchor(domain.Position{X: 50, Y: 60})
	ev, _ = d.CelebrateAt(domain.LevelNormal, 10, domain.Position{}, "")
	if (ev.Position != domain.Position{X: 50, Y: 60}) {
		t.Errorf("expected overridden anchor, got %+v", ev.Position)
	}
}

func TestDispatcher_Milestone(t *testing.T) {
	_, d := newEngine()

	best := &domain.PersonalBest{Kind: "tasks_in_day", NewValue: 12, PreviousValue: 9}
	ev, err := d.Milestone("100 Tasks Complete!", 100, domain.Position{}, best)
	if err != nil {
		t.Fatalf("milestone: %v", err)
	}
	if ev.Level != domain.LevelMilestone || ev.Message != "100 Tasks Complete!" {
		t.Errorf("unexpected milestone event: %+v", ev)
	}
	if !ev.IsPersonalBest() {
		t.Error("expected personal best carried through")
	}

	if _, err := d.Milestone("", 100, domain.Position{}, nil); err != domain.ErrMilestoneWithoutMessage {
		t.Errorf("milestone without message should be rejected, got %v", err)
	}
}

func TestDispatcher_FanOut(t *testing.T) {
	_, d := newEngine()

	ch1, cancel1 := d.SubscribeCelebrations()
	ch2, cancel2 := d.SubscribeCelebrations()
	defer cancel1()
	defer cancel2()

	sent, _ := d.CelebrateAt(domain.LevelNormal, 10, domain.Position{}, "")

	for i, ch := range []<-chan domain.CelebrationEvent{ch1, ch2} {
		select {
		case got := <-ch:
			if got.ID != sent.ID {
				t.Errorf("subscriber %d got wrong event: %s", i, got.ID)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d never received the event", i)
		}
	}
}

func TestDispatcher_PublishOrder(t *testing.T) {
	_, d := newEngine()
	ch, cancel := d.SubscribeCelebrations()
	defer cancel()

	e1, _ := d.CelebrateAt(domain.LevelQuick, 5, domain.Position{}, "")
	e2, _ := d.CelebrateAt(domain.LevelQuick, 5, domain.Position{}, "")

	if got := <-ch; got.ID != e1.ID {
		t.Errorf("first delivery should be first publish, got %s", got.ID)
	}
	if got := <-ch; got.ID != e2.ID {
		t.Errorf("second delivery should be second publish, got %s", got.ID)
	}
}

func TestDispatcher_UnsubscribeStopsDelivery(t *testing.T) {
	_, d := newEngine()
	ch, cancel := d.SubscribeCelebrations()
	cancel()

	_, _ = d.CelebrateAt(domain.LevelNormal, 10, domain.Position{}, "")

	// Channel is closed after cancel; a receive must not yield an event.
	if ev, ok := <-ch; ok {
		t.Errorf("received %s after unsubscribe", ev.ID)
	}

	cancel() // double-cancel must be safe
}

func TestDispatcher_MomentumSubscription(t *testing.T) {
	_, d := newEngine()
	ch, cancel := d.SubscribeMomentum()
	defer cancel()

	_, _ = d.Celebrate(testTask(domain.PriorityNormal), domain.Position{}, 10, nil)

	select {
	case c := <-ch:
		if c.State.StreakCount != 1 || c.Activated {
			t.Errorf("unexpected momentum change: %+v", c)
		}
	case <-time.After(time.Second):
		t.Fatal("no momentum change delivered")
	}

	d.ResetMomentum()
	select {
	case c := <-ch:
		if c.State.StreakCount != 0 || c.State.IsActive {
			t.Errorf("expected reset change, got %+v", c)
		}
	case <-time.After(time.Second):
		t.Fatal("no reset change delivered")
	}
}

func TestDispatcher_RapidFireIndependentEvents(t *testing.T) {
	_, d := newEngine()

	e1, _ := d.CelebrateAt(domain.LevelNormal, 10, domain.Position{X: 1, Y: 1}, "")
	e2, _ := d.CelebrateAt(domain.LevelNormal, 10, domain.Position{X: 1, Y: 1}, "")
	if e1.ID == e2.ID {
		t.Error("identical celebrate calls must produce distinct event ids")
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Display Guard Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestDisplay_AutoDismiss(t *testing.T) {
	v := celebration.NewDisplay()
	ev, _ := domain.NewCelebrationEvent(domain.LevelQuick, 5, 1.0, domain.Position{}, "", nil)

	v.ShowFor(ev, 30*time.Millisecond)
	if cur := v.Current(); cur == nil || cur.ID != ev.ID {
		t.Fatal("event should be visible immediately after Show")
	}

	time.Sleep(80 * time.Millisecond)
	if v.Current() != nil {
		t.Error("event should have auto-dismissed")
	}
}

func TestDisplay_Supersession(t *testing.T) {
	v := celebration.NewDisplay()
	e1, _ := domain.NewCelebrationEvent(domain.LevelQuick, 5, 1.0, domain.Position{}, "", nil)
	e2, _ := domain.NewCelebrationEvent(domain.LevelNormal, 10, 1.0, domain.Position{}, "", nil)

	v.ShowFor(e1, 40*time.Millisecond)
	v.ShowFor(e2, 150*time.Millisecond)

	// Past e1's expiry but within e2's hold: e1's timer must not clear e2.
	time.Sleep(80 * time.Millisecond)
	if cur := v.Current(); cur == nil || cur.ID != e2.ID {
		t.Fatal("stale timer clobbered the superseding event")
	}

	time.Sleep(120 * time.Millisecond)
	if v.Current() != nil {
		t.Error("superseding event should expire on its own schedule")
	}
}

func TestDisplay_MilestonePinsUntilCleared(t *testing.T) {
	v := celebration.NewDisplay()
	ev, _ := domain.NewCelebrationEvent(domain.LevelMilestone, 100, 1.0, domain.Position{}, "Level 5!", nil)

	v.ShowFor(ev, 0) // pinned
	time.Sleep(50 * time.Millisecond)
	if v.Current() == nil {
		t.Fatal("pinned milestone must not self-expire")
	}

	v.Clear()
	if v.Current() != nil {
		t.Error("Clear should empty the slot")
	}
}
