// Package layout rebuilds reading-order text lines from positioned PDF text fragments.
package layout

import (
	"math"
	"slices"
	"strings"

	"github.com/jonathan/roster-retention/internal/types"
)

// DefaultRowTolerance is the maximum vertical distance, in page units, between fragments
// that belong to the same row.
const DefaultRowTolerance = 2.0

// ReconstructLines groups one page's fragments into rows, top to bottom, and joins each row
// left to right with single spaces. A non-positive tolerance falls back to DefaultRowTolerance.
func ReconstructLines(fragments []types.Fragment, tolerance float64) []string {
	if tolerance <= 0 {
		tolerance = DefaultRowTolerance
	}

	kept := make([]types.Fragment, 0, len(fragments))
	for _, f := range fragments {
		if strings.TrimSpace(f.Text) == "" {
			continue
		}
		kept = append(kept, f)
	}
	if len(kept) == 0 {
		return []string{}
	}

	// Fragments within tolerance compare by X only, so the sort must stay stable.
	slices.SortStableFunc(kept, func(a, b types.Fragment) int {
		if math.Abs(a.Y-b.Y) > tolerance {
			if a.Y > b.Y {
				return -1
			}
			return 1
		}
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		default:
			return 0
		}
	})

	lines := make([]string, 0)
	var row []types.Fragment
	var refY float64

	for _, f := range kept {
		if len(row) > 0 && math.Abs(f.Y-refY) > tolerance {
			if line := closeRow(row); line != "" {
				lines = append(lines, line)
			}
			row = nil
		}
		if len(row) == 0 {
			refY = f.Y
		}
		row = append(row, f)
	}
	if line := closeRow(row); line != "" {
		lines = append(lines, line)
	}

	return lines
}

// closeRow orders a row by X and joins its text with whitespace collapsed.
func closeRow(row []types.Fragment) string {
	if len(row) == 0 {
		return ""
	}
	slices.SortStableFunc(row, func(a, b types.Fragment) int {
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		default:
			return 0
		}
	})

	parts := make([]string, len(row))
	for i, f := range row {
		parts[i] = f.Text
	}
	return CollapseSpaces(strings.Join(parts, " "))
}

// CollapseSpaces replaces every whitespace run with a single space and trims the ends.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// JoinPages concatenates per-page line lists into one newline-separated document text.
func JoinPages(pages [][]string) string {
	var sb strings.Builder
	for _, lines := range pages {
		for _, line := range lines {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
