package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// DropoutQuery filters a dropout list by free-text search and shift.
type DropoutQuery struct {
	Search string `json:"search,omitempty" validate:"max=200"`
	Shift  string `json:"shift,omitempty" validate:"omitempty,oneof=All Mañana Tarde Vespertino Noche Otro"`
}

// Validate validates the DropoutQuery using the validator.
func (q *DropoutQuery) Validate() error {
	validate := validator.New()
	return validate.Struct(q)
}

// Normalized returns a copy with a trimmed search term and an explicit shift.
func (q DropoutQuery) Normalized() DropoutQuery {
	q.Search = strings.TrimSpace(q.Search)
	if q.Shift == "" {
		q.Shift = ShiftAll
	}
	return q
}

// ContactToggleResponse reports the contact state of one student after a toggle.
type ContactToggleResponse struct {
	StudentID string   `json:"student_id"`
	Contacted bool     `json:"contacted"`
	FollowUp  FollowUp `json:"follow_up"`
}
