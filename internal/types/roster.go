// Package types provides type definitions for structured data used throughout the roster-retention system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Default values applied to records found before any section header.
const (
	DefaultLevel    = "N/A"
	DefaultSchedule = "N/A"
	DefaultCategory = "Otra"
)

// Fragment is one run of text at a page position, as produced by the PDF renderer.
// Y grows upwards, so rows higher on the page have a larger Y.
type Fragment struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// SectionMetadata holds the category, level and schedule declared by the most recent
// header lines of a roster document.
type SectionMetadata struct {
	Category        string `json:"category"`
	CategoryRaw     string `json:"category_raw"`
	Level           string `json:"level"`
	LevelNormalized string `json:"level_normalized"`
	Schedule        string `json:"schedule"`
	ScheduleBlock   string `json:"schedule_block"`
}

// StudentRecord is one data row of a roster document together with the section metadata
// in effect where it was found.
type StudentRecord struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Category        string `json:"category"`
	CategoryRaw     string `json:"category_raw"`
	Level           string `json:"level"`
	LevelNormalized string `json:"level_normalized"`
	Schedule        string `json:"schedule"`
	ScheduleBlock   string `json:"schedule_block"`
	Shift           string `json:"shift"`
}

// ShiftOrDefault returns the record shift, treating an empty value as ShiftOther.
func (r StudentRecord) ShiftOrDefault() string {
	if r.Shift == "" {
		return ShiftOther
	}
	return r.Shift
}
