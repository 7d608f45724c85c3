package cli

import (
	"fmt"
	"strings"

	"github.com/veloce-app/veloce/internal/app/tasks"
	"github.com/veloce-app/veloce/internal/domain"
)

// shortID abbreviates a UUID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolveTaskID expands a (possibly abbreviated) task ID against the
// open task list, git style. Exact IDs pass through untouched.
func resolveTaskID(svc *tasks.Service, ref string) (string, error) {
	if _, err := svc.Get(ref); err == nil {
		return ref, nil
	}

	open, err := svc.ListOpen()
	if err != nil {
		return "", err
	}
	var matches []string
	for _, t := range open {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("no open task matches %q: %w", ref, domain.ErrTaskNotFound)
	default:
		return "", fmt.Errorf("task id %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// celebrationBanner renders a one-line terminal rendition of an event.
func celebrationBanner(ev domain.CelebrationEvent) string {
	var b strings.Builder
	switch ev.Level {
	case domain.LevelMilestone:
		b.WriteString("🏆 ")
	case domain.LevelImportant:
		b.WriteString("🎉 ")
	case domain.LevelNormal:
		b.WriteString("✨ ")
	default:
		b.WriteString("✓ ")
	}
	if ev.Message != "" {
		b.WriteString(ev.Message + "  ")
	}
	fmt.Fprintf(&b, "+%d XP", ev.DisplayXP())
	if ev.HasMultiplier() {
		fmt.Fprintf(&b, " (x%.2f momentum)", ev.Multiplier)
	}
	if ev.IsPersonalBest() {
		fmt.Fprintf(&b, "  — new personal best: %d (was %d)", ev.PersonalBest.NewValue, ev.PersonalBest.PreviousValue)
	}
	return b.String()
}
