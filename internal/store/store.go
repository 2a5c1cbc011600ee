// Package store handles SQLite persistence of comparison runs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/roster-retention/internal/history"
	"github.com/jonathan/roster-retention/internal/types"

	_ "modernc.org/sqlite" // SQLite driver.
)

var _ history.Store = (*Store)(nil)

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store wraps SQLite access for comparison runs.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids "database is locked".
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS comparison_runs (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			earlier_name TEXT NOT NULL,
			current_name TEXT NOT NULL,
			comparison TEXT NOT NULL,
			advisories TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_contacts (
			run_id TEXT NOT NULL,
			student_id TEXT NOT NULL,
			PRIMARY KEY (run_id, student_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_comparison_runs_created_at ON comparison_runs(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun stores a comparison run and its contacts, replacing any run with the same id.
func (s *Store) SaveRun(ctx context.Context, run *types.ComparisonRun) (err error) {
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO comparison_runs (id, label, earlier_name, current_name, comparison, advisories, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET label = excluded.label, earlier_name = excluded.earlier_name,
		   current_name = excluded.current_name, comparison = excluded.comparison, advisories = excluded.advisories`,
		run.ID.String(), run.Label, run.EarlierName, run.CurrentName,
		string(comparisonJSON), string(advisoriesJSON), run.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	if err = replaceContacts(ctx, tx, run.ID, run.Contacted); err != nil {
		return err
	}
	return tx.Commit()
}

// GetRun returns the run with the given id.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (*types.ComparisonRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, label, earlier_name, current_name, comparison, advisories, created_at
		 FROM comparison_runs WHERE id = ?`, id.String())
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, history.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	if run.Contacted, err = s.contacts(ctx, id); err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns the newest runs first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]types.ComparisonRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, earlier_name, current_name, comparison, advisories, created_at
		 FROM comparison_runs ORDER BY created_at DESC LIMIT ?`, history.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

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
	_ = rows.Close()

	for i := range runs {
		if runs[i].Contacted, err = s.contacts(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// SetContacts replaces the contacted student ids of a run.
func (s *Store) SetContacts(ctx context.Context, id uuid.UUID, studentIDs []string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM comparison_runs WHERE id = ?`, id.String()).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to look up run %s: %w", id, err)
	}
	if exists == 0 {
		err = history.ErrNotFound
		return err
	}
	if err = replaceContacts(ctx, tx, id, studentIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func replaceContacts(ctx context.Context, tx *sql.Tx, id uuid.UUID, studentIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM run_contacts WHERE run_id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to clear contacts: %w", err)
	}
	for _, sid := range studentIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO run_contacts (run_id, student_id) VALUES (?, ?)`, id.String(), sid); err != nil {
			return fmt.Errorf("failed to save contact %s: %w", sid, err)
		}
	}
	return nil
}

func (s *Store) contacts(ctx context.Context, id uuid.UUID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT student_id FROM run_contacts WHERE run_id = ? ORDER BY student_id`, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load contacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := []string{}
	for rows.Next() {
		var sid string
		if err := rows.Scan(&sid); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		ids = append(ids, sid)
	}
	return ids, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*types.ComparisonRun, error) {
	var (
		run                                types.ComparisonRun
		id, comparisonJSON, advisoriesJSON string
		createdAt                          string
	)
	if err := row.Scan(&id, &run.Label, &run.EarlierName, &run.CurrentName,
		&comparisonJSON, &advisoriesJSON, &createdAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", id, err)
	}
	run.ID = parsed
	if run.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	if err := json.Unmarshal([]byte(comparisonJSON), &run.Comparison); err != nil {
		return nil, fmt.Errorf("failed to unmarshal comparison: %w", err)
	}
	if err := json.Unmarshal([]byte(advisoriesJSON), &run.Advisories); err != nil {
		return nil, fmt.Errorf("failed to unmarshal advisories: %w", err)
	}
	if len(run.Advisories) == 0 {
		run.Advisories = nil
	}
	return &run, nil
}
