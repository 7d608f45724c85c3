// Package cli implements the Veloce command-line interface using Cobra.
// Each subcommand maps to a task or engagement capability (add,
// complete, list, stats, etc.).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "veloce",
	Short: "Veloce — Tasks that celebrate with you",
	Long: `Veloce is a task engine with a celebration system.
Complete tasks, build momentum streaks, earn XP, and unlock
achievements — all from your terminal or over the local API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
