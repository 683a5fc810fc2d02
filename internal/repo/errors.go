package repo

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the sentinel wrapped by every NotFoundError.
	ErrNotFound = errors.New("not found")

	// ErrInvalid is the sentinel wrapped by every ValidationError.
	ErrInvalid = errors.New("invalid")
)

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s: not found", e.Entity, e.ID)
}

// Unwrap allows errors.Is(err, ErrNotFound).
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ValidationError reports input rejected before touching the database.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap allows errors.Is(err, ErrInvalid).
func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// IsNotFound returns true if err reports a missing entity.
// Uses errors.Is to handle wrapped errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation returns true if err reports rejected input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalid)
}

func notFound(entity string, id any) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: fmt.Sprint(id)}
}
