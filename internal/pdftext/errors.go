package pdftext

import "fmt"

// OpenError represents a document that could not be opened as a PDF
type OpenError struct {
	Message string
	Cause   error
}

func (e *OpenError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("open error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("open error: %s", e.Message)
}

func (e *OpenError) Unwrap() error {
	return e.Cause
}

// PageError represents a page whose content could not be read
type PageError struct {
	Page  int
	Cause error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Page, e.Cause)
}

func (e *PageError) Unwrap() error {
	return e.Cause
}
