package followup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/roster-retention/internal/types"
)

func TestTracker_Toggle(t *testing.T) {
	tr := NewTracker()

	assert.True(t, tr.Toggle("1001"))
	assert.True(t, tr.Contacted("1001"))
	assert.Equal(t, 1, tr.Count())

	assert.False(t, tr.Toggle("1001"))
	assert.False(t, tr.Contacted("1001"))
	assert.Equal(t, 0, tr.Count())
}

func TestTracker_RestoreAndIDs(t *testing.T) {
	tr := NewTracker("3", "1", "", "2", "1")

	assert.Equal(t, []string{"1", "2", "3"}, tr.IDs())
	assert.Equal(t, StatusContacted, tr.Status("2"))
	assert.Equal(t, StatusPending, tr.Status("9"))
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker("1", "2")

	tr.Reset()

	assert.Equal(t, 0, tr.Count())
	assert.Empty(t, tr.IDs())
}

func TestTracker_Metrics(t *testing.T) {
	tests := []struct {
		name      string
		contacted []string
		dropouts  int
		expected  types.FollowUp
	}{
		{"No dropouts", nil, 0, types.FollowUp{}},
		{"Nothing contacted", nil, 4, types.FollowUp{Dropouts: 4, Pending: 4}},
		{"One of three", []string{"a"}, 3, types.FollowUp{Dropouts: 3, Contacted: 1, Pending: 2, CompletionPercent: 33}},
		{"Two of three", []string{"a", "b"}, 3, types.FollowUp{Dropouts: 3, Contacted: 2, Pending: 1, CompletionPercent: 67}},
		{"All contacted", []string{"a", "b"}, 2, types.FollowUp{Dropouts: 2, Contacted: 2, CompletionPercent: 100}},
		{"Pending never negative", []string{"a", "b", "c"}, 2, types.FollowUp{Dropouts: 2, Contacted: 3, CompletionPercent: 150}},
		{"Contacts without dropouts", []string{"a"}, 0, types.FollowUp{Contacted: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(tt.contacted...)
			assert.Equal(t, tt.expected, tr.Metrics(tt.dropouts))
		})
	}
}
