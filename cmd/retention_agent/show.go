package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/roster-retention/internal/comparison"
	"github.com/jonathan/roster-retention/internal/followup"
	"github.com/jonathan/roster-retention/internal/history"
	"github.com/jonathan/roster-retention/internal/observability"
	"github.com/jonathan/roster-retention/internal/types"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a saved comparison, or list recent ones",
	Long:  "Print a saved comparison with its follow-up progress. Without --run-id, the most recent comparisons are listed.",
	RunE:  runShow,
}

var (
	showRunID       string
	showSearch      string
	showShift       string
	showLimit       int
	showDatabaseURL string
	showHistoryPath string
)

func init() {
	showCmd.Flags().StringVar(&showRunID, "run-id", "", "Comparison run ID")
	showCmd.Flags().StringVar(&showSearch, "search", "", "Only list dropouts whose name or id contains this text")
	showCmd.Flags().StringVar(&showShift, "shift", "", "Only list dropouts of this shift")
	showCmd.Flags().IntVar(&showLimit, "limit", history.DefaultListLimit, "Number of comparisons to list")
	showCmd.Flags().StringVar(&showDatabaseURL, "db-url", "", "PostgreSQL URL for the history (default: local SQLite)")
	showCmd.Flags().StringVar(&showHistoryPath, "history", "", "Path to the SQLite history file")

	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, _ []string) error {
	query := types.DropoutQuery{Search: showSearch, Shift: showShift}
	if err := query.Validate(); err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	ctx := context.Background()
	h, err := openHistory(ctx, showDatabaseURL, showHistoryPath)
	if err != nil {
		return err
	}
	defer closeHistory(h)

	out := cmd.OutOrStdout()
	if showRunID == "" {
		runs, err := h.ListRuns(ctx, showLimit)
		if err != nil {
			return fmt.Errorf("failed to list comparisons: %w", err)
		}
		if len(runs) == 0 {
			_, _ = fmt.Fprintln(out, "No saved comparisons")
			return nil
		}
		for _, run := range runs {
			_, _ = fmt.Fprintf(out, "%s  %s  %s  %d%%\n",
				run.ID, run.CreatedAt.Local().Format("2006-01-02 15:04"), run.Label, run.Comparison.RetentionRate)
		}
		return nil
	}

	run, err := loadRun(ctx, h, showRunID)
	if err != nil {
		return err
	}

	tracker := followup.NewTracker(run.Contacted...)
	dropouts := run.Comparison.Dropouts

	printer := observability.NewPrinter(out)
	printer.PrintComparison(run.Label, run.Comparison, run.Advisories)
	printer.PrintBreakdown(comparison.Summarize(dropouts))
	printer.PrintDropouts(comparison.Filter(dropouts, query), tracker)
	printer.PrintFollowUp(tracker.Metrics(len(dropouts)))
	return nil
}
