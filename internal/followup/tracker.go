// Package followup tracks which dropouts have been contacted.
package followup

import (
	"math"
	"slices"

	"github.com/jonathan/roster-retention/internal/types"
)

// Tracker is a set of contacted student ids. It is not safe for concurrent use.
type Tracker struct {
	contacted map[string]struct{}
}

// NewTracker returns a tracker holding the given ids, typically restored from storage.
func NewTracker(ids ...string) *Tracker {
	t := &Tracker{contacted: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id != "" {
			t.contacted[id] = struct{}{}
		}
	}
	return t
}

// Toggle flips the contact status of id and returns the new status.
func (t *Tracker) Toggle(id string) bool {
	if _, ok := t.contacted[id]; ok {
		delete(t.contacted, id)
		return false
	}
	t.contacted[id] = struct{}{}
	return true
}

// Contacted reports whether id is marked as contacted.
func (t *Tracker) Contacted(id string) bool {
	_, ok := t.contacted[id]
	return ok
}

// Count returns the number of contacted ids.
func (t *Tracker) Count() int {
	return len(t.contacted)
}

// IDs returns the contacted ids in sorted order.
func (t *Tracker) IDs() []string {
	ids := make([]string, 0, len(t.contacted))
	for id := range t.contacted {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Reset clears every contact mark.
func (t *Tracker) Reset() {
	clear(t.contacted)
}

// Pending is the number of dropouts not yet contacted, never negative.
func (t *Tracker) Pending(dropouts int) int {
	return max(dropouts-t.Count(), 0)
}

// CompletionPercent is the rounded share of dropouts contacted, or 0 with no dropouts.
func (t *Tracker) CompletionPercent(dropouts int) int {
	if dropouts <= 0 {
		return 0
	}
	return int(math.Round(float64(t.Count()) / float64(dropouts) * 100))
}

// Metrics summarises follow-up progress over a dropout count.
func (t *Tracker) Metrics(dropouts int) types.FollowUp {
	return types.FollowUp{
		Dropouts:          dropouts,
		Contacted:         t.Count(),
		Pending:           t.Pending(dropouts),
		CompletionPercent: t.CompletionPercent(dropouts),
	}
}

// Status renders the export label for id.
func (t *Tracker) Status(id string) string {
	if t.Contacted(id) {
		return StatusContacted
	}
	return StatusPending
}

// Export status labels.
const (
	StatusContacted = "Contactado"
	StatusPending   = "Pendiente"
)
