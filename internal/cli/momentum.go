package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/veloce-app/veloce/internal/daemon"
	"github.com/veloce-app/veloce/internal/domain"
)

func init() {
	momentumCmd.Flags().BoolVar(&momentumReset, "reset", false, "Reset the momentum streak")
	rootCmd.AddCommand(momentumCmd)
}

var momentumReset bool

var momentumCmd = &cobra.Command{
	Use:   "momentum",
	Short: "Show (or reset) the momentum streak",
	RunE:  runMomentum,
}

func runMomentum(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if momentumReset {
		d.Dispatcher.ResetMomentum()
		fmt.Println("Momentum reset.")
		return nil
	}

	state := d.Dispatcher.Momentum()
	if state.IsActive {
		fmt.Printf("🔥 Momentum active: %d in a row (x%.2f XP)\n", state.StreakCount, state.Multiplier())
	} else {
		fmt.Printf("Momentum dormant: %d of %d completions\n",
			state.StreakCount, domain.MomentumActivationThreshold)
	}
	return nil
}
