package history

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/roster-retention/internal/types"
)

// Memory is an in-process Store. Runs are copied on the way in and out.
type Memory struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]types.ComparisonRun
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{runs: make(map[uuid.UUID]types.ComparisonRun)}
}

// SaveRun inserts or replaces a run.
func (m *Memory) SaveRun(_ context.Context, run *types.ComparisonRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = cloneRun(*run)
	return nil
}

// GetRun returns a copy of the run with the given id.
func (m *Memory) GetRun(_ context.Context, id uuid.UUID) (*types.ComparisonRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneRun(run)
	return &out, nil
}

// ListRuns returns the newest runs first.
func (m *Memory) ListRuns(_ context.Context, limit int) ([]types.ComparisonRun, error) {
	m.mu.RLock()
	runs := make([]types.ComparisonRun, 0, len(m.runs))
	for _, r := range m.runs {
		runs = append(runs, cloneRun(r))
	}
	m.mu.RUnlock()

	slices.SortFunc(runs, func(a, b types.ComparisonRun) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if n := Limit(limit); len(runs) > n {
		runs = runs[:n]
	}
	return runs, nil
}

// SetContacts replaces the contacted ids of a run.
func (m *Memory) SetContacts(_ context.Context, id uuid.UUID, studentIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return ErrNotFound
	}
	run.Contacted = slices.Clone(studentIDs)
	m.runs[id] = run
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

func cloneRun(r types.ComparisonRun) types.ComparisonRun {
	r.Comparison.Dropouts = slices.Clone(r.Comparison.Dropouts)
	r.Advisories = slices.Clone(r.Advisories)
	r.Contacted = slices.Clone(r.Contacted)
	if r.Contacted == nil {
		r.Contacted = []string{}
	}
	return r
}
