package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/roster-retention/internal/history"
	"github.com/jonathan/roster-retention/internal/pipeline"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrStudentNotFound indicates a student id that is not among the dropouts of a comparison
type ErrStudentNotFound struct {
	StudentID string
}

func (e *ErrStudentNotFound) Error() string {
	return fmt.Sprintf("student not found among dropouts: %s", e.StudentID)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		studentErr    *ErrStudentNotFound
		missingErr    *pipeline.MissingInputError
		extractionErr *pipeline.ExtractionError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr), errors.As(err, &missingErr):
		return http.StatusBadRequest
	case errors.Is(err, history.ErrNotFound), errors.As(err, &studentErr):
		return http.StatusNotFound
	case errors.As(err, &extractionErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
