package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/veloce-app/veloce/internal/daemon"
)

func init() {
	rootCmd.AddCommand(achievementsCmd)
}

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List achievements and unlock progress",
	RunE:  runAchievements,
}

func runAchievements(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	unlocked, err := d.Achievements.ListUnlocked()
	if err != nil {
		return err
	}
	when := make(map[string]string, len(unlocked))
	for _, u := range unlocked {
		when[u.ID] = u.UnlockedAt.Format("2006-01-02")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCATEGORY\tREWARD\tUNLOCKED")
	for _, def := range d.Achievements.Definitions() {
		status := "-"
		if at, ok := when[def.ID]; ok {
			status = at
		}
		fmt.Fprintf(w, "%s\t%s\t%d XP\t%s\n", def.Name, def.Category, def.RewardXP, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d / %d unlocked\n", len(unlocked), d.Achievements.TotalCount())
	return nil
}
