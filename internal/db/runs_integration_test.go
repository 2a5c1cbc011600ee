//go:build integration
// +build integration

package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/roster-retention/internal/history"
	"github.com/jonathan/roster-retention/internal/types"
)

func setupTestDB(t *testing.T) *DB {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := Connect(ctx, dbURL)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to DB: %v", err)
	}
	return db
}

func TestRunLifecycle_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	run := &types.ComparisonRun{
		ID:          uuid.New(),
		Label:       "Comparación: enero.pdf → febrero.pdf",
		EarlierName: "enero.pdf",
		CurrentName: "febrero.pdf",
		Comparison: types.Comparison{
			Dropouts:      []types.StudentRecord{{ID: "22222222", Name: "DIAZ LUIS", Shift: types.ShiftMorning}},
			TotalEarlier:  2,
			TotalCurrent:  1,
			RetentionRate: 50,
		},
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, db.SaveRun(ctx, run))

	got, err := db.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Label, got.Label)
	assert.Equal(t, run.Comparison, got.Comparison)
	assert.Equal(t, []string{}, got.Contacted)
	assert.True(t, run.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, db.SetContacts(ctx, run.ID, []string{"22222222"}))
	got, err = db.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"22222222"}, got.Contacted)

	runs, err := db.ListRuns(ctx, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, runs)

	_, err = db.GetRun(ctx, uuid.New())
	assert.ErrorIs(t, err, history.ErrNotFound)
	assert.ErrorIs(t, db.SetContacts(ctx, uuid.New(), nil), history.ErrNotFound)
}
