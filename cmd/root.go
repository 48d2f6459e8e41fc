package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dkrish/proctor/internal/progress"
)

var rootCmd = &cobra.Command{
	Use:   "proctor",
	Short: "Take timed assessments from your terminal",
	Long:  "Proctor — terminal client for timed assessments. Sessions survive restarts: quit mid-test and pick up where you left off.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides PROCTOR_DB env var)")

	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resetCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then PROCTOR_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, progress.EnsureDir(p)
	}
	return progress.DefaultDBPath()
}
