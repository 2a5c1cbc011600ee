package comparison

import (
	"strings"

	"github.com/jonathan/roster-retention/internal/types"
)

// Filter keeps the dropouts whose name or id contains the search term, case-insensitively,
// and whose shift matches the query. An empty shift or "All" matches every record.
func Filter(dropouts []types.StudentRecord, q types.DropoutQuery) []types.StudentRecord {
	q = q.Normalized()
	term := strings.ToLower(q.Search)

	out := make([]types.StudentRecord, 0, len(dropouts))
	for _, r := range dropouts {
		if term != "" && !strings.Contains(strings.ToLower(r.Name), term) && !strings.Contains(r.ID, term) {
			continue
		}
		if q.Shift != types.ShiftAll && r.ShiftOrDefault() != q.Shift {
			continue
		}
		out = append(out, r)
	}
	return out
}
