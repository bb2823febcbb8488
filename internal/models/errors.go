package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no task exists with the requested id.
var ErrNotFound = errors.New("task not found")

// ValidationError reports a missing or invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StoreError wraps a failure of the underlying storage engine.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
