package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/veloce-app/veloce/internal/daemon"
)

func init() {
	rootCmd.AddCommand(rmCmd)
}

var rmCmd = &cobra.Command{
	Use:     "rm <task-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a task without completing it",
	Args:    cobra.ExactArgs(1),
	RunE:    runRm,
}

func runRm(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	id, err := resolveTaskID(d.Tasks, args[0])
	if err != nil {
		return err
	}
	if err := d.Tasks.Delete(id); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", shortID(id))
	return nil
}
