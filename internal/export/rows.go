// Package export writes the dropout list of a comparison to spreadsheet formats.
package export

import (
	"github.com/jonathan/roster-retention/internal/followup"
	"github.com/jonathan/roster-retention/internal/types"
)

// Row is one exported dropout with its contact status.
type Row struct {
	ID       string
	Name     string
	Level    string
	Schedule string
	Shift    string
	Status   string
}

func (r Row) values() []string {
	return []string{r.ID, r.Name, r.Level, r.Schedule, r.Shift, r.Status}
}

// Rows builds export rows for dropouts, in order, with their status in tracker.
// A nil tracker marks every row as pending.
func Rows(dropouts []types.StudentRecord, tracker *followup.Tracker) []Row {
	if tracker == nil {
		tracker = followup.NewTracker()
	}
	rows := make([]Row, 0, len(dropouts))
	for _, d := range dropouts {
		rows = append(rows, Row{
			ID:       d.ID,
			Name:     d.Name,
			Level:    d.Level,
			Schedule: d.Schedule,
			Shift:    d.ShiftOrDefault(),
			Status:   tracker.Status(d.ID),
		})
	}
	return rows
}
