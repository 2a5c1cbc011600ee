package types

import (
	"time"

	"github.com/google/uuid"
)

// Shift buckets inferred from a schedule string.
const (
	ShiftAll       = "All"
	ShiftMorning   = "Mañana"
	ShiftAfternoon = "Tarde"
	ShiftEvening   = "Vespertino"
	ShiftNight     = "Noche"
	ShiftOther     = "Otro"
)

// ValidShifts lists the values accepted by the shift filter, in display order.
var ValidShifts = []string{ShiftAll, ShiftMorning, ShiftAfternoon, ShiftEvening, ShiftNight, ShiftOther}

// Comparison is the outcome of comparing an earlier roster against a current one.
type Comparison struct {
	Dropouts      []StudentRecord `json:"dropouts"`
	TotalEarlier  int             `json:"total_earlier"`
	TotalCurrent  int             `json:"total_current"`
	RetentionRate int             `json:"retention_rate"`
}

// BucketCount is one entry of an aggregate breakdown.
type BucketCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Breakdown aggregates a dropout list by level and shift.
type Breakdown struct {
	ByLevel    []BucketCount `json:"by_level"`
	ByShift    []BucketCount `json:"by_shift"`
	WorstShift string        `json:"worst_shift"`
}

// FollowUp summarises contact progress over a dropout list.
type FollowUp struct {
	Dropouts          int `json:"dropouts"`
	Contacted         int `json:"contacted"`
	Pending           int `json:"pending"`
	CompletionPercent int `json:"completion_percent"`
}

// Advisory is a non-fatal notice produced while running a comparison, such as a document
// that yielded no records.
type Advisory struct {
	Side    string `json:"side"`
	Message string `json:"message"`
}

// ComparisonRun is a persisted comparison together with its contact state.
type ComparisonRun struct {
	ID          uuid.UUID  `json:"id"`
	Label       string     `json:"label"`
	EarlierName string     `json:"earlier_name"`
	CurrentName string     `json:"current_name"`
	Comparison  Comparison `json:"comparison"`
	Advisories  []Advisory `json:"advisories,omitempty"`
	Contacted   []string   `json:"contacted"`
	CreatedAt   time.Time  `json:"created_at"`
}
