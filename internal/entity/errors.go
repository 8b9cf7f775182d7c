package entity

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no matching order, user or product exists.
var ErrNotFound = errors.New("not found")

// ValidationError rejects a request before it reaches storage.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Missing builds a ValidationError for an absent required field.
func Missing(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "required"}
}
