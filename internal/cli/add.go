package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/veloce-app/veloce/internal/daemon"
	"github.com/veloce-app/veloce/internal/domain"
)

func init() {
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "normal", "Priority: low, normal, high, urgent")
	addCmd.Flags().StringVar(&addDue, "due", "", "Due date (YYYY-MM-DD)")
	rootCmd.AddCommand(addCmd)
}

var (
	addPriority string
	addDue      string
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a new task",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	var due time.Time
	if addDue != "" {
		due, err = time.ParseInLocation("2006-01-02", addDue, time.Local)
		if err != nil {
			return fmt.Errorf("invalid due date %q (want YYYY-MM-DD)", addDue)
		}
		// Due at end of that day, not midnight at its start
		due = due.Add(24*time.Hour - time.Second)
	}

	task, err := d.Tasks.Add(strings.Join(args, " "), domain.Priority(addPriority), due)
	if err != nil {
		return err
	}

	fmt.Printf("Added %s  [%s]  %s\n", shortID(task.ID), task.Priority, task.Title)
	return nil
}
