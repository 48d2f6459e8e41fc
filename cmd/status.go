package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkrish/proctor/internal/assessment"
	"github.com/dkrish/proctor/internal/progress"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show saved in-progress assessments",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		db, err := progress.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open progress store: %w", err)
		}
		defer db.Close()

		any := false
		for _, schema := range assessment.All() {
			store := db.Slot(schema.SlotKey)
			snap, err := store.Load(ctx, "")
			if err != nil {
				return fmt.Errorf("load %s slot: %w", schema.SlotKey, err)
			}
			if snap == nil {
				continue
			}
			any = true
			fmt.Printf("%-16s %d/%d answered, %s left, saved %s\n",
				schema.Type,
				len(snap.Answers), len(snap.QuestionIDs),
				formatSeconds(snap.SecondsRemaining),
				snap.SavedAt.Local().Format("Jan 2 15:04"))
		}
		if !any {
			fmt.Println("No assessments in progress.")
		}
		return nil
	},
}

func formatSeconds(secs int) string {
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
