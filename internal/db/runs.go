package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/roster-retention/internal/history"
	"github.com/jonathan/roster-retention/internal/types"
)

var _ history.Store = (*DB)(nil)

const runColumns = `id, label, earlier_name, current_name, comparison, advisories, contacted, created_at`

// SaveRun inserts a comparison run, replacing any run with the same id
func (db *DB) SaveRun(ctx context.Context, run *types.ComparisonRun) error {
	comparisonJSON, err := json.Marshal(run.Comparison)
	if err != nil {
		return fmt.Errorf("failed to marshal comparison: %w", err)
	}
	advisories := run.Advisories
	if advisories == nil {
		advisories = []types.Advisory{}
	}
	advisoriesJSON, err := json.Marshal(advisories)
	if err != nil {
		return fmt.Errorf("failed to marshal advisories: %w", err)
	}
	contacted := run.Contacted
	if contacted == nil {
		contacted = []string{}
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO comparison_runs (`+runColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET label = $2, earlier_name = $3, current_name = $4,
		   comparison = $5, advisories = $6, contacted = $7`,
		run.ID, run.Label, run.EarlierName, run.CurrentName, comparisonJSON, advisoriesJSON, contacted, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun retrieves a comparison run by id
func (db *DB) GetRun(ctx context.Context, id uuid.UUID) (*types.ComparisonRun, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM comparison_runs WHERE id = $1`, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, history.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns the most recent comparison runs
func (db *DB) ListRuns(ctx context.Context, limit int) ([]types.ComparisonRun, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+runColumns+` FROM comparison_runs ORDER BY created_at DESC LIMIT $1`,
		history.Limit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []types.ComparisonRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// SetContacts replaces the contacted student ids of a run
func (db *DB) SetContacts(ctx context.Context, id uuid.UUID, studentIDs []string) error {
	if studentIDs == nil {
		studentIDs = []string{}
	}
	tag, err := db.pool.Exec(ctx, `UPDATE comparison_runs SET contacted = $1 WHERE id = $2`, studentIDs, id)
	if err != nil {
		return fmt.Errorf("failed to set contacts for run %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return history.ErrNotFound
	}
	return nil
}

func scanRun(row pgx.Row) (*types.ComparisonRun, error) {
	var run types.ComparisonRun
	var comparisonJSON, advisoriesJSON []byte
	if err := row.Scan(&run.ID, &run.Label, &run.EarlierName, &run.CurrentName,
		&comparisonJSON, &advisoriesJSON, &run.Contacted, &run.CreatedAt); err != nil {
		return nil, err
	}
	if err := decodeRun(&run, comparisonJSON, advisoriesJSON); err != nil {
		return nil, err
	}
	return &run, nil
}

func decodeRun(run *types.ComparisonRun, comparisonJSON, advisoriesJSON []byte) error {
	if err := json.Unmarshal(comparisonJSON, &run.Comparison); err != nil {
		return fmt.Errorf("failed to unmarshal comparison: %w", err)
	}
	if len(advisoriesJSON) > 0 {
		if err := json.Unmarshal(advisoriesJSON, &run.Advisories); err != nil {
			return fmt.Errorf("failed to unmarshal advisories: %w", err)
		}
	}
	if len(run.Advisories) == 0 {
		run.Advisories = nil
	}
	if run.Contacted == nil {
		run.Contacted = []string{}
	}
	return nil
}
