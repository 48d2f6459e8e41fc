package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkrish/proctor/internal/assessment"
	"github.com/dkrish/proctor/internal/progress"
)

var resetCmd = &cobra.Command{
	Use:   "reset [assessment]",
	Short: "Discard saved progress",
	Long:  "Discard saved progress for one assessment, or for all of them when no argument is given. The remote session is left untouched.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		schemas := assessment.All()
		if len(args) == 1 {
			schema, err := assessment.ByType(assessment.Type(args[0]))
			if err != nil {
				return fmt.Errorf("%w (choose one of: %s)", err, assessmentNames())
			}
			schemas = []assessment.Schema{schema}
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		db, err := progress.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open progress store: %w", err)
		}
		defer db.Close()

		for _, schema := range schemas {
			store := db.Slot(schema.SlotKey)
			exists, err := store.Exists(ctx)
			if err != nil {
				return fmt.Errorf("probe %s slot: %w", schema.SlotKey, err)
			}
			if !exists {
				continue
			}
			if err := store.Clear(ctx); err != nil {
				return fmt.Errorf("clear %s slot: %w", schema.SlotKey, err)
			}
			fmt.Printf("Cleared saved progress for %s.\n", schema.Type)
		}
		return nil
	},
}
