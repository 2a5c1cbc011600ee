package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/roster-retention/internal/types"
)

func TestReconstructLines(t *testing.T) {
	tests := []struct {
		name      string
		fragments []types.Fragment
		expected  []string
	}{
		{
			name:      "Empty input",
			fragments: nil,
			expected:  []string{},
		},
		{
			name: "Whitespace only fragments are dropped",
			fragments: []types.Fragment{
				{Text: "   ", X: 10, Y: 700},
				{Text: "", X: 20, Y: 700},
			},
			expected: []string{},
		},
		{
			name: "Rows ordered top to bottom",
			fragments: []types.Fragment{
				{Text: "second", X: 10, Y: 680},
				{Text: "first", X: 10, Y: 700},
				{Text: "third", X: 10, Y: 660},
			},
			expected: []string{"first", "second", "third"},
		},
		{
			name: "Fragments within tolerance share a row ordered by X",
			fragments: []types.Fragment{
				{Text: "Maria Gomez", X: 120, Y: 700.5},
				{Text: "90112233", X: 40, Y: 699},
				{Text: "3", X: 10, Y: 700},
				{Text: "maria@x.com", X: 300, Y: 700.8},
			},
			expected: []string{"3 90112233 Maria Gomez maria@x.com"},
		},
		{
			name: "Tolerance boundary is inclusive",
			fragments: []types.Fragment{
				{Text: "a", X: 10, Y: 700},
				{Text: "b", X: 20, Y: 698},
				{Text: "c", X: 30, Y: 697.9},
			},
			expected: []string{"a b", "c"},
		},
		{
			name: "Inner whitespace is collapsed",
			fragments: []types.Fragment{
				{Text: "Nivel:   ", X: 10, Y: 500},
				{Text: "  Level   9", X: 60, Y: 500},
			},
			expected: []string{"Nivel: Level 9"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ReconstructLines(tt.fragments, DefaultRowTolerance)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestReconstructLines_ReferenceYIsFirstFragment(t *testing.T) {
	// 700 -> 698.5 -> 697 drifts by more than the tolerance from the first fragment.
	fragments := []types.Fragment{
		{Text: "a", X: 10, Y: 700},
		{Text: "b", X: 20, Y: 698.5},
		{Text: "c", X: 30, Y: 697},
	}

	result := ReconstructLines(fragments, DefaultRowTolerance)

	assert.Equal(t, []string{"a b", "c"}, result)
}

func TestReconstructLines_NonPositiveToleranceUsesDefault(t *testing.T) {
	fragments := []types.Fragment{
		{Text: "left", X: 10, Y: 100},
		{Text: "right", X: 90, Y: 101},
	}

	assert.Equal(t, []string{"left right"}, ReconstructLines(fragments, 0))
	assert.Equal(t, []string{"left right"}, ReconstructLines(fragments, -5))
}

func TestReconstructLines_DoesNotMutateInput(t *testing.T) {
	fragments := []types.Fragment{
		{Text: "b", X: 20, Y: 100},
		{Text: "a", X: 10, Y: 100},
	}
	original := append([]types.Fragment(nil), fragments...)

	_ = ReconstructLines(fragments, DefaultRowTolerance)

	assert.Equal(t, original, fragments)
}

func TestCollapseSpaces(t *testing.T) {
	assert.Equal(t, "a b c", CollapseSpaces("  a \t b\n\nc  "))
	assert.Equal(t, "", CollapseSpaces("   "))
}

func TestJoinPages(t *testing.T) {
	text := JoinPages([][]string{{"one", "two"}, {}, {"three"}})
	assert.Equal(t, "one\ntwo\nthree\n", text)
}
