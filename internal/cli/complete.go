package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/veloce-app/veloce/internal/daemon"
	"github.com/veloce-app/veloce/internal/domain"
)

func init() {
	rootCmd.AddCommand(completeCmd)
}

var completeCmd = &cobra.Command{
	Use:     "complete <task-id>",
	Aliases: []string{"done"},
	Short:   "Complete a task and celebrate",
	Args:    cobra.ExactArgs(1),
	RunE:    runComplete,
}

func runComplete(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	id, err := resolveTaskID(d.Tasks, args[0])
	if err != nil {
		return err
	}

	// Terminal completions have no tap position; the dispatcher anchors
	// the celebration itself.
	res, err := d.Tasks.Complete(id, domain.Position{})
	if err != nil {
		return err
	}

	fmt.Printf("Completed: %s\n", res.Task.Title)
	fmt.Println(celebrationBanner(res.Event))
	if res.LeveledUp {
		fmt.Printf("⬆️  Level up! You are now level %d\n", res.NewLevel)
	}
	for _, def := range res.Unlocked {
		fmt.Printf("🏅 Achievement unlocked: %s — %s (+%d XP)\n", def.Name, def.Message, def.RewardXP)
	}

	state := d.Dispatcher.Momentum()
	if state.IsActive {
		fmt.Printf("🔥 Momentum: %d in a row (x%.2f)\n", state.StreakCount, state.Multiplier())
	} else if remaining := domain.MomentumActivationThreshold - state.StreakCount; remaining > 0 {
		fmt.Printf("   %d more to ignite momentum\n", remaining)
	}
	return nil
}
