// Package history defines persistence of comparison runs and their contact state.
package history

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jonathan/roster-retention/internal/types"
)

// ErrNotFound is returned when a comparison run does not exist.
var ErrNotFound = errors.New("comparison run not found")

// DefaultListLimit bounds ListRuns when no positive limit is given.
const DefaultListLimit = 50

// Store persists comparison runs. Implementations must be safe for concurrent use.
type Store interface {
	SaveRun(ctx context.Context, run *types.ComparisonRun) error
	GetRun(ctx context.Context, id uuid.UUID) (*types.ComparisonRun, error)
	// ListRuns returns the most recent runs first.
	ListRuns(ctx context.Context, limit int) ([]types.ComparisonRun, error)
	// SetContacts replaces the contacted student ids of a run.
	SetContacts(ctx context.Context, id uuid.UUID, studentIDs []string) error
	Close() error
}

// Limit returns limit, or DefaultListLimit when limit is not positive.
func Limit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
