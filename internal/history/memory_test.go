package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/roster-retention/internal/types"
)

func newRun(label string, created time.Time) *types.ComparisonRun {
	return &types.ComparisonRun{
		ID:    uuid.New(),
		Label: label,
		Comparison: types.Comparison{
			Dropouts:      []types.StudentRecord{{ID: "22222222", Name: "DIAZ LUIS"}},
			TotalEarlier:  2,
			TotalCurrent:  1,
			RetentionRate: 50,
		},
		CreatedAt: created,
	}
}

func TestMemory_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	run := newRun("Comparación: a.pdf → b.pdf", time.Now())

	require.NoError(t, m.SaveRun(ctx, run))

	got, err := m.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Label, got.Label)
	assert.Equal(t, run.Comparison, got.Comparison)
	assert.Equal(t, []string{}, got.Contacted)

	// Callers cannot mutate stored state through the returned copy.
	got.Comparison.Dropouts[0].Name = "CHANGED"
	again, err := m.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "DIAZ LUIS", again.Comparison.Dropouts[0].Name)
}

func TestMemory_GetMissing(t *testing.T) {
	_, err := NewMemory().GetRun(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemory_SetContacts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	run := newRun("run", time.Now())
	require.NoError(t, m.SaveRun(ctx, run))

	require.NoError(t, m.SetContacts(ctx, run.ID, []string{"22222222"}))

	got, err := m.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"22222222"}, got.Contacted)

	assert.ErrorIs(t, m.SetContacts(ctx, uuid.New(), nil), ErrNotFound)
}

func TestMemory_ListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, m.SaveRun(ctx, newRun("first", base)))
	require.NoError(t, m.SaveRun(ctx, newRun("third", base.Add(2*time.Hour))))
	require.NoError(t, m.SaveRun(ctx, newRun("second", base.Add(time.Hour))))

	runs, err := m.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "third", runs[0].Label)
	assert.Equal(t, "second", runs[1].Label)
	assert.Equal(t, "first", runs[2].Label)

	limited, err := m.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "third", limited[0].Label)
}

func TestLimit(t *testing.T) {
	assert.Equal(t, DefaultListLimit, Limit(0))
	assert.Equal(t, DefaultListLimit, Limit(-3))
	assert.Equal(t, 7, Limit(7))
}
