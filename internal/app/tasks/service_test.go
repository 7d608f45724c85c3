package tasks_test

import (
	"errors"
	"testing"
	"time"

	"github.com/veloce-app/veloce/internal/app/achievement"
	"github.com/veloce-app/veloce/internal/app/celebration"
	"github.com/veloce-app/veloce/internal/app/scoring"
	"github.com/veloce-app/veloce/internal/app/tasks"
	"github.com/veloce-app/veloce/internal/domain"
	"github.com/veloce-app/veloce/internal/infra/sqlite"
)

type fixture struct {
	svc        *tasks.Service
	dispatcher *celebration.Dispatcher
	clock      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	disp := celebration.NewDispatcher(celebration.NewTracker())
	f := &fixture{
		svc:        tasks.NewService(db, scoring.NewService(db), achievement.NewService(db), disp),
		dispatcher: disp,
		clock:      time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
	}
	f.svc.SetClock(func() time.Time { return f.clock })
	return f
}

func (f *fixture) addTask(t *testing.T, title string, p domain.Priority) *domain.Task {
	t.Helper()
	task, err := f.svc.Add(title, p, time.Time{})
	if err != nil {
		t.Fatalf("add %q: %v", title, err)
	}
	return task
}

// ═══════════════════════════════════════════════════════════════════════════
// CRUD Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestAdd_Validation(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Add("", domain.PriorityNormal, time.Time{}); !errors.Is(err, domain.ErrEmptyTitle) {
		t.Errorf("expected ErrEmptyTitle, got %v", err)
	}
	if _, err := f.svc.Add("x", domain.Priority("sometime"), time.Time{}); !errors.Is(err, domain.ErrInvalidPriority) {
		t.Errorf("expected ErrInvalidPriority, got %v", err)
	}

	task := f.addTask(t, "Write report", domain.PriorityHigh)
	got, err := f.svc.Get(task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Write report" {
		t.Errorf("unexpected task: %+v", got)
	}
}

func TestDelete_NoCelebration(t *testing.T) {
	f := newFixture(t)
	task := f.addTask(t, "Abandoned", domain.PriorityLow)

	events, cancel := f.dispatcher.SubscribeCelebrations()
	defer cancel()

	if err := f.svc.Delete(task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	select {
	case ev := <-events:
		t.Errorf("delete should not celebrate, got %+v", ev)
	default:
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Completion Pipeline Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestComplete_AwardsXPAndCelebrates(t *testing.T) {
	f := newFixture(t)
	task := f.addTask(t, "Fix login bug", domain.PriorityHigh)

	res, err := f.svc.Complete(task.ID, domain.Position{X: 120, Y: 300})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	if res.Event.Level != domain.LevelImportant {
		t.Errorf("high priority should celebrate important, got %s", res.Event.Level)
	}
	if res.Event.Multiplier != 1.0 {
		t.Errorf("first completion should carry 1.0 multiplier, got %f", res.Event.Multiplier)
	}
	if res.XPAwarded != 20 {
		t.Errorf("high priority base XP is 20, got %d", res.XPAwarded)
	}
	if res.Event.Position.X != 120 || res.Event.Position.Y != 300 {
		t.Errorf("position not carried: %+v", res.Event.Position)
	}
	if len(res.Unlocked) != 1 || res.Unlocked[0].ID != "first_complete" {
		t.Errorf("first completion should unlock first_complete, got %+v", res.Unlocked)
	}
}

func TestComplete_Twice(t *testing.T) {
	f := newFixture(t)
	task := f.addTask(t, "Once only", domain.PriorityNormal)

	if _, err := f.svc.Complete(task.ID, domain.Position{}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := f.svc.Complete(task.ID, domain.Position{}); !errors.Is(err, domain.ErrTaskAlreadyCompleted) {
		t.Errorf("expected ErrTaskAlreadyCompleted, got %v", err)
	}
}

func TestComplete_Missing(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Complete("nope", domain.Position{}); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestComplete_MomentumBuildsAcrossCompletions(t *testing.T) {
	f := newFixture(t)

	var results []*tasks.CompletionResult
	for i := 0; i < 4; i++ {
		task := f.addTask(t, "Task", domain.PriorityNormal)
		res, err := f.svc.Complete(task.ID, domain.Position{})
		if err != nil {
			t.Fatalf("complete %d: %v", i, err)
		}
		results = append(results, res)
	}

	// Multiplier reflects the state before each completion counts:
	// completions 1-3 ride at 1.0 (momentum activates at the third), the
	// fourth sees the active 3-streak.
	for i := 0; i < 3; i++ {
		if results[i].Event.Multiplier != 1.0 {
			t.Errorf("completion %d multiplier = %f, want 1.0", i+1, results[i].Event.Multiplier)
		}
	}
	if results[3].Event.Multiplier != 1.15 {
		t.Errorf("fourth completion multiplier = %f, want 1.15", results[3].Event.Multiplier)
	}
	if results[3].XPAwarded != 12 { // round(10 * 1.15)
		t.Errorf("fourth completion XP = %d, want 12", results[3].XPAwarded)
	}

	state := f.dispatcher.Momentum()
	if state.StreakCount != 4 || !state.IsActive {
		t.Errorf("unexpected momentum: %+v", state)
	}
}

func TestComplete_LevelUpFiresMilestone(t *testing.T) {
	f := newFixture(t)

	events, cancel := f.dispatcher.SubscribeCelebrations()
	defer cancel()

	// Urgent tasks at 30 XP each; L2 needs 125. The fifth completion
	// crosses it (momentum pushes the later ones above base).
	var leveled *tasks.CompletionResult
	for i := 0; i < 6 && leveled == nil; i++ {
		task := f.addTask(t, "Urgent", domain.PriorityUrgent)
		res, err := f.svc.Complete(task.ID, domain.Position{})
		if err != nil {
			t.Fatalf("complete %d: %v", i, err)
		}
		if res.LeveledUp {
			leveled = res
		}
	}
	if leveled == nil {
		t.Fatal("expected a level-up within six urgent completions")
	}
	if leveled.NewLevel < 2 {
		t.Errorf("expected at least L2, got %d", leveled.NewLevel)
	}

	found := false
	for {
		select {
		case ev := <-events:
			if ev.Level == domain.LevelMilestone && ev.Message == "Level 2 Reached!" {
				found = true
			}
			continue
		default:
		}
		break
	}
	if !found {
		t.Error("expected a Level 2 milestone on the feed")
	}
}

func TestComplete_PersonalBestBanner(t *testing.T) {
	f := newFixture(t)

	// Day one: complete 2 tasks, setting the baseline silently.
	for i := 0; i < 2; i++ {
		task := f.addTask(t, "Day one", domain.PriorityNormal)
		res, err := f.svc.Complete(task.ID, domain.Position{})
		if err != nil {
			t.Fatalf("complete: %v", err)
		}
		if res.PersonalBest != nil {
			t.Errorf("baseline day should not banner, got %+v", res.PersonalBest)
		}
	}

	// Day two: the third completion beats the record of 2.
	f.clock = f.clock.AddDate(0, 0, 1)
	var last *tasks.CompletionResult
	for i := 0; i < 3; i++ {
		task := f.addTask(t, "Day two", domain.PriorityNormal)
		var err error
		last, err = f.svc.Complete(task.ID, domain.Position{})
		if err != nil {
			t.Fatalf("complete: %v", err)
		}
	}
	if last.PersonalBest == nil {
		t.Fatal("expected a personal best on the third day-two completion")
	}
	if last.PersonalBest.NewValue != 3 || last.PersonalBest.PreviousValue != 2 {
		t.Errorf("unexpected best: %+v", last.PersonalBest)
	}
	if !last.Event.IsPersonalBest() {
		t.Error("event should carry the personal best")
	}
}

func TestComplete_PersonalBestBannerNonUTC(t *testing.T) {
	f := newFixture(t)

	// 01:00 local in UTC+3 is still the previous day in UTC. The banner
	// suppression must judge "same day" in the completion's own zone.
	zone := time.FixedZone("UTC+3", 3*60*60)
	f.clock = time.Date(2026, 8, 30, 1, 0, 0, 0, zone)

	complete := func() *tasks.CompletionResult {
		task := f.addTask(t, "Zoned", domain.PriorityNormal)
		res, err := f.svc.Complete(task.ID, domain.Position{})
		if err != nil {
			t.Fatalf("complete: %v", err)
		}
		return res
	}

	// Baseline day: four completions, all silent.
	for i := 0; i < 4; i++ {
		if res := complete(); res.PersonalBest != nil {
			t.Errorf("baseline completion %d bannered: %+v", i+1, res.PersonalBest)
		}
	}

	// Next local day: completions 1-4 match the record, the fifth beats
	// it and banners, the sixth beats its own same-day record silently.
	f.clock = f.clock.AddDate(0, 0, 1)
	for i := 0; i < 4; i++ {
		if res := complete(); res.PersonalBest != nil {
			t.Errorf("day-two completion %d bannered early: %+v", i+1, res.PersonalBest)
		}
	}
	res := complete()
	if res.PersonalBest == nil || res.PersonalBest.NewValue != 5 || res.PersonalBest.PreviousValue != 4 {
		t.Fatalf("fifth day-two completion should banner {5, 4}, got %+v", res.PersonalBest)
	}
	if res = complete(); res.PersonalBest != nil {
		t.Errorf("same-day re-beat should stay silent, got %+v", res.PersonalBest)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Streak Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestDailyStreak_ExtendsAndBreaks(t *testing.T) {
	f := newFixture(t)

	complete := func() {
		task := f.addTask(t, "Daily", domain.PriorityNormal)
		if _, err := f.svc.Complete(task.ID, domain.Position{}); err != nil {
			t.Fatalf("complete: %v", err)
		}
	}

	complete()
	stats, _ := f.svc.Stats()
	if stats.CurrentStreak != 1 {
		t.Errorf("day 1 streak = %d, want 1", stats.CurrentStreak)
	}

	// Same day again: no change
	complete()
	stats, _ = f.svc.Stats()
	if stats.CurrentStreak != 1 {
		t.Errorf("same-day streak = %d, want 1", stats.CurrentStreak)
	}

	// Next day extends
	f.clock = f.clock.AddDate(0, 0, 1)
	complete()
	stats, _ = f.svc.Stats()
	if stats.CurrentStreak != 2 {
		t.Errorf("day 2 streak = %d, want 2", stats.CurrentStreak)
	}

	// Two-day gap restarts at 1
	f.clock = f.clock.AddDate(0, 0, 3)
	complete()
	stats, _ = f.svc.Stats()
	if stats.CurrentStreak != 1 {
		t.Errorf("post-gap streak = %d, want 1", stats.CurrentStreak)
	}
}

func TestCheckStreakBreak_ResetsMomentum(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		task := f.addTask(t, "Build momentum", domain.PriorityNormal)
		if _, err := f.svc.Complete(task.ID, domain.Position{}); err != nil {
			t.Fatalf("complete: %v", err)
		}
	}
	if !f.dispatcher.Momentum().IsActive {
		t.Fatal("momentum should be active after 3 completions")
	}

	// Yesterday's activity survives the check.
	f.clock = f.clock.AddDate(0, 0, 1)
	if err := f.svc.CheckStreakBreak(); err != nil {
		t.Fatalf("check: %v", err)
	}
	if !f.dispatcher.Momentum().IsActive {
		t.Error("one-day gap should not break the streak")
	}

	// A two-day gap breaks it.
	f.clock = f.clock.AddDate(0, 0, 2)
	if err := f.svc.CheckStreakBreak(); err != nil {
		t.Fatalf("check: %v", err)
	}
	state := f.dispatcher.Momentum()
	if state.IsActive || state.StreakCount != 0 {
		t.Errorf("expected dormant momentum after gap, got %+v", state)
	}
	stats, _ := f.svc.Stats()
	if stats.CurrentStreak != 0 {
		t.Errorf("daily streak should reset, got %d", stats.CurrentStreak)
	}
}

func TestCheckStreakBreak_FreshDB(t *testing.T) {
	f := newFixture(t)
	if err := f.svc.CheckStreakBreak(); err != nil {
		t.Fatalf("fresh db check should be a no-op, got %v", err)
	}
}

func TestStats_Snapshot(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		task := f.addTask(t, "Stat", domain.PriorityLow)
		if _, err := f.svc.Complete(task.ID, domain.Position{}); err != nil {
			t.Fatalf("complete: %v", err)
		}
	}

	stats, err := f.svc.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TasksCompleted != 3 || stats.CompletedToday != 3 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.BestDay != 3 {
		t.Errorf("best day = %d, want 3", stats.BestDay)
	}
	if stats.TotalXP == 0 || stats.Level < 1 {
		t.Errorf("xp not accounted: %+v", stats)
	}
}
