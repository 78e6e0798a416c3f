package domain

import "fmt"

// ValidationError reports a structure document that is internally
// inconsistent. It is raised before any store access.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ParsingError reports a malformed structure document (invalid JSON or
// schema mismatch).
type ParsingError struct {
	Message string
	Err     error
}

func (e *ParsingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ParsingError) Unwrap() error {
	return e.Err
}
