// Package comparison computes dropouts, retention and aggregate breakdowns between two rosters.
package comparison

import (
	"math"
	"strings"

	"github.com/jonathan/roster-retention/internal/types"
)

// graduationMarker is the terminal level designation: "LEVEL 19" / "NIVEL 19".
const graduationMarker = "19"

// IsGraduated reports whether a level designation marks a student who finished the program.
func IsGraduated(level string) bool {
	return strings.Contains(strings.ToUpper(level), graduationMarker)
}

// Compare returns the earlier records missing from current, excluding graduated students,
// together with totals and the retention rate.
func Compare(earlier, current []types.StudentRecord) types.Comparison {
	currentIDs := make(map[string]struct{}, len(current))
	for _, r := range current {
		currentIDs[r.ID] = struct{}{}
	}

	dropouts := make([]types.StudentRecord, 0)
	for _, r := range earlier {
		if _, reenrolled := currentIDs[r.ID]; reenrolled {
			continue
		}
		if IsGraduated(r.Level) {
			continue
		}
		dropouts = append(dropouts, r)
	}

	return types.Comparison{
		Dropouts:      dropouts,
		TotalEarlier:  len(earlier),
		TotalCurrent:  len(current),
		RetentionRate: RetentionRate(len(earlier), len(dropouts)),
	}
}

// RetentionRate is the rounded percentage of earlier students that did not drop out.
// It is 0 when there were no earlier students.
func RetentionRate(totalEarlier, dropouts int) int {
	if totalEarlier <= 0 {
		return 0
	}
	rate := int(math.Round(float64(totalEarlier-dropouts) / float64(totalEarlier) * 100))
	return max(0, min(100, rate))
}
