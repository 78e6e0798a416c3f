// Package application carries the store error taxonomy and the command
// objects that drive the structure store from the CLI, HTTP and MCP
// surfaces.
package application

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports an invalid command argument. Invalid structure
// documents are reported by domain.ValidationError instead.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// ConflictError reports a natural key or foreign key constraint
// violation at write time. It aborts the enclosing transaction.
type ConflictError struct {
	Op  string
	Err error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict during %s: %v", e.Op, e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// ConnectionError reports that the store is unreachable or an
// operation-level failure such as a timeout.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("store connection failed during %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// UpdateError reports any other failure during an upsert or association
// reconciliation.
type UpdateError struct {
	Op  string
	Err error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("update failed during %s: %v", e.Op, e.Err)
}

func (e *UpdateError) Unwrap() error { return e.Err }
