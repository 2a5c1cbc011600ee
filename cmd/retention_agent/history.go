package main

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/google/uuid"

	"github.com/jonathan/roster-retention/internal/config"
	"github.com/jonathan/roster-retention/internal/db"
	"github.com/jonathan/roster-retention/internal/history"
	"github.com/jonathan/roster-retention/internal/store"
	"github.com/jonathan/roster-retention/internal/types"
)

// openHistory opens Postgres when a database URL is given (flag or DATABASE_URL) and the
// local SQLite history otherwise.
func openHistory(ctx context.Context, databaseURL, historyPath string) (history.Store, error) {
	env := config.FromEnv()
	if databaseURL == "" {
		databaseURL = env.DatabaseURL
	}
	if databaseURL != "" {
		database, err := db.Connect(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return database, nil
	}

	if historyPath == "" {
		historyPath = env.HistoryPath
	}
	if historyPath == "" {
		historyPath = config.DefaultHistoryPath()
	}
	s, err := store.Open(historyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return s, nil
}

func closeHistory(h history.Store) {
	if err := h.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close history: %v\n", err)
	}
}

// loadRun parses runID and fetches the stored comparison
func loadRun(ctx context.Context, h history.Store, runID string) (*types.ComparisonRun, error) {
	id, err := uuid.Parse(runID)
	if err != nil {
		return nil, fmt.Errorf("invalid run-id: %w", err)
	}
	run, err := h.GetRun(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return run, nil
}

func isDropout(run *types.ComparisonRun, studentID string) bool {
	return slices.ContainsFunc(run.Comparison.Dropouts, func(r types.StudentRecord) bool {
		return r.ID == studentID
	})
}
