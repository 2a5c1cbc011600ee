package comparison

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/roster-retention/internal/types"
)

func TestSummarize(t *testing.T) {
	dropouts := []types.StudentRecord{
		{ID: "1", LevelNormalized: "L10", Shift: types.ShiftNight},
		{ID: "2", LevelNormalized: "L02", Shift: types.ShiftMorning},
		{ID: "3", LevelNormalized: "N/A", Shift: ""},
		{ID: "4", LevelNormalized: "L10", Shift: types.ShiftMorning},
		{ID: "5", LevelNormalized: "Avanzado", Shift: types.ShiftMorning},
		{ID: "6", LevelNormalized: "", Shift: types.ShiftNight},
	}

	b := Summarize(dropouts)

	assert.Equal(t, []types.BucketCount{
		{Name: "N/A", Count: 2},
		{Name: "Avanzado", Count: 1},
		{Name: "L02", Count: 1},
		{Name: "L10", Count: 2},
	}, b.ByLevel)
	assert.Equal(t, []types.BucketCount{
		{Name: types.ShiftNight, Count: 2},
		{Name: types.ShiftMorning, Count: 3},
		{Name: types.ShiftOther, Count: 1},
	}, b.ByShift)
	assert.Equal(t, types.ShiftMorning, b.WorstShift)
}

func TestSummarize_WorstShiftTieKeepsFirst(t *testing.T) {
	b := Summarize([]types.StudentRecord{
		{ID: "1", Shift: types.ShiftAfternoon},
		{ID: "2", Shift: types.ShiftNight},
	})

	assert.Equal(t, types.ShiftAfternoon, b.WorstShift)
}

func TestSummarize_Empty(t *testing.T) {
	b := Summarize(nil)

	assert.Empty(t, b.ByLevel)
	assert.Empty(t, b.ByShift)
	assert.Equal(t, "N/A", b.WorstShift)
}
