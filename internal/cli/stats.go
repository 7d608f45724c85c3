package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/veloce-app/veloce/internal/daemon"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show level, XP, streaks, and achievements",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Tasks.CheckStreakBreak(); err != nil {
		return err
	}

	stats, err := d.Tasks.Stats()
	if err != nil {
		return err
	}
	toNext, err := d.Scoring.XPToNextLevel()
	if err != nil {
		return err
	}
	pct, err := d.Scoring.ProgressPct()
	if err != nil {
		return err
	}
	unlockedCount, err := d.Achievements.UnlockedCount()
	if err != nil {
		return err
	}

	fmt.Printf("Level %d  (%d XP", stats.Level, stats.TotalXP)
	if toNext > 0 {
		fmt.Printf(", %d to next — %.0f%%", toNext, pct)
	}
	fmt.Println(")")
	fmt.Printf("Tasks completed: %d total, %d today (best day: %d)\n",
		stats.TasksCompleted, stats.CompletedToday, stats.BestDay)
	fmt.Printf("Daily streak: %d\n", stats.CurrentStreak)
	fmt.Printf("Achievements: %d / %d\n", unlockedCount, d.Achievements.TotalCount())
	return nil
}
