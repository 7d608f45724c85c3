package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/veloce-app/veloce/internal/daemon"
	"github.com/veloce-app/veloce/internal/domain"
)

func init() {
	listCmd.Flags().BoolVar(&listDone, "done", false, "Show recently completed tasks instead")
	rootCmd.AddCommand(listCmd)
}

var listDone bool

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List open tasks",
	RunE:    runList,
}

func runList(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	var list []domain.Task
	if listDone {
		list, err = d.Tasks.ListCompleted(25)
	} else {
		list, err = d.Tasks.ListOpen()
	}
	if err != nil {
		return err
	}

	if len(list) == 0 {
		if listDone {
			fmt.Println("Nothing completed yet.")
		} else {
			fmt.Println("No open tasks. Run 'veloce add <title>' to create one.")
		}
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if listDone {
		fmt.Fprintln(w, "ID\tPRIORITY\tTITLE\tCOMPLETED")
		for _, t := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				shortID(t.ID), t.Priority, t.Title,
				t.CompletedAt.Format("2006-01-02 15:04"))
		}
	} else {
		fmt.Fprintln(w, "ID\tPRIORITY\tTITLE\tDUE")
		for _, t := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				shortID(t.ID), t.Priority, t.Title, formatDue(t.DueAt))
		}
	}
	return w.Flush()
}

func formatDue(due time.Time) string {
	if due.IsZero() {
		return "-"
	}
	if due.Before(time.Now()) {
		return due.Format("2006-01-02") + " (overdue)"
	}
	return due.Format("2006-01-02")
}
