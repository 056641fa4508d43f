package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/soteriahealth/soteria/services"
)

var (
	resetUser string
	resetYes  bool
)

// NewResetCmd creates the reset command.
func NewResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Hard-reset one user's progress",
		Long: `Delete every completion, daily progress row, milestone and pain
check-in of the user and zero their stats and journey. This cannot be undone.

Examples:
  soteria reset --user 6f1c... --yes`,
		RunE: runReset,
	}
	cmd.Flags().StringVar(&resetUser, "user", "", "user UUID to reset (required)")
	cmd.Flags().BoolVar(&resetYes, "yes", false, "confirm the irreversible reset")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func runReset(cmd *cobra.Command, args []string) error {
	userID, err := uuid.Parse(resetUser)
	if err != nil || userID == uuid.Nil {
		return fmt.Errorf("--user must be a UUID, got %q", resetUser)
	}
	if !resetYes {
		return errors.New("refusing to reset without --yes")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	sum, err := newEngine(cfg, db).HardReset(cmd.Context(), userID)
	if err != nil {
		return err
	}
	printResetSummary(cmd, userID, sum)
	return nil
}

func printResetSummary(cmd *cobra.Command, userID uuid.UUID, sum services.ResetSummary) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "user\t%s\n", userID)
	fmt.Fprintf(w, "daily_progress\t%d\n", sum.DailyProgress)
	fmt.Fprintf(w, "routine_completions\t%d\n", sum.RoutineCompletions)
	fmt.Fprintf(w, "user_milestones\t%d\n", sum.UserMilestones)
	fmt.Fprintf(w, "milestone_progress\t%d\n", sum.MilestoneProgress)
	fmt.Fprintf(w, "pain_check_ins\t%d\n", sum.PainCheckIns)
	fmt.Fprintf(w, "total\t%d\n", sum.Total())
	_ = w.Flush()
}
