package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/roster-retention/internal/followup"
	"github.com/jonathan/roster-retention/internal/observability"
)

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Toggle the contacted mark of a dropout in a saved comparison",
	RunE:  runContact,
}

var (
	contactRunID       string
	contactStudentID   string
	contactDatabaseURL string
	contactHistoryPath string
)

func init() {
	contactCmd.Flags().StringVar(&contactRunID, "run-id", "", "Comparison run ID (required)")
	contactCmd.Flags().StringVar(&contactStudentID, "student", "", "Student id to toggle (required)")
	contactCmd.Flags().StringVar(&contactDatabaseURL, "db-url", "", "PostgreSQL URL for the history (default: local SQLite)")
	contactCmd.Flags().StringVar(&contactHistoryPath, "history", "", "Path to the SQLite history file")

	for _, name := range []string{"run-id", "student"} {
		if err := contactCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark flag as required: %v", err))
		}
	}

	rootCmd.AddCommand(contactCmd)
}

func runContact(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	h, err := openHistory(ctx, contactDatabaseURL, contactHistoryPath)
	if err != nil {
		return err
	}
	defer closeHistory(h)

	run, err := loadRun(ctx, h, contactRunID)
	if err != nil {
		return err
	}
	if !isDropout(run, contactStudentID) {
		return fmt.Errorf("student %s is not among the dropouts of run %s", contactStudentID, run.ID)
	}

	tracker := followup.NewTracker(run.Contacted...)
	contacted := tracker.Toggle(contactStudentID)
	if err := h.SetContacts(ctx, run.ID, tracker.IDs()); err != nil {
		return fmt.Errorf("failed to update contacts: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "%s: %s\n", contactStudentID, tracker.Status(contactStudentID))
	if !contacted {
		_, _ = fmt.Fprintf(out, "Contact mark removed\n")
	}
	observability.NewPrinter(out).PrintFollowUp(tracker.Metrics(len(run.Comparison.Dropouts)))
	return nil
}
