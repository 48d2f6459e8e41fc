package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dkrish/proctor/internal/assessment"
	"github.com/dkrish/proctor/internal/identity"
	"github.com/dkrish/proctor/internal/progress"
	"github.com/dkrish/proctor/internal/provider"
	"github.com/dkrish/proctor/internal/session"
	"github.com/dkrish/proctor/internal/tui"
)

var takeCmd = &cobra.Command{
	Use:   "take <assessment>",
	Short: "Start or resume an assessment",
	Long: "Start or resume an assessment.\n\nAvailable assessments: " +
		assessmentNames() + ".",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := assessment.ByType(assessment.Type(args[0]))
		if err != nil {
			return fmt.Errorf("%w (choose one of: %s)", err, assessmentNames())
		}

		cfg := provider.ConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("provider config: %w", err)
		}

		ownerID, err := identity.OwnerID(cfg.Token)
		if err != nil {
			return fmt.Errorf("read identity from token: %w", err)
		}

		prov, err := provider.NewHTTPProvider(cfg)
		if err != nil {
			return fmt.Errorf("build provider client: %w", err)
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

		store := db.Slot(schema.SlotKey)
		newCtrl := func() *session.Controller {
			return session.New(schema, prov, store, ownerID)
		}

		resumeTarget, _ := cmd.Flags().GetString("resume")
		return tui.Run(newCtrl, resumeTarget)
	},
}

func init() {
	takeCmd.Flags().String("resume", "", "Session ID to resume (default: resume whatever is saved locally)")
}

func assessmentNames() string {
	var names []string
	for _, s := range assessment.All() {
		names = append(names, string(s.Type))
	}
	return strings.Join(names, ", ")
}
