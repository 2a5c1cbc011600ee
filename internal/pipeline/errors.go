package pipeline

import "fmt"

// MissingInputError is returned when one of the two roster documents was not supplied.
type MissingInputError struct {
	Side string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing input error: no %s roster supplied", e.Side)
}

// ExtractionError is returned when a roster document could not be rendered to text.
type ExtractionError struct {
	Side   string
	Source string
	Cause  error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction error: %s roster %q: %v", e.Side, e.Source, e.Cause)
	}
	return fmt.Sprintf("extraction error: %s roster %q", e.Side, e.Source)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
