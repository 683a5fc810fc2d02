package task

import (
	"errors"
	"fmt"
)

var (
	// ErrZeroTask is returned when a zero Task is executed, including one
	// produced by a continuation.
	ErrZeroTask = errors.New("task: zero task executed")

	// ErrNilContinuation is returned when Then was given a nil continuation.
	ErrNilContinuation = errors.New("task: nil continuation")

	// ErrNilRunner is returned by Execute when no runner was supplied.
	ErrNilRunner = errors.New("task: nil runner")
)

// ContinuationPanicError reports a panic raised while a continuation built
// the next task. It fails only the composite that invoked the continuation.
type ContinuationPanicError struct {
	Value any
	Stack []byte
}

func (e *ContinuationPanicError) Error() string {
	return fmt.Sprintf("task: continuation panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it was an error.
func (e *ContinuationPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsContinuationPanic reports whether err came from a panicking continuation.
// Uses errors.As to handle wrapped errors.
func IsContinuationPanic(err error) bool {
	var pe *ContinuationPanicError
	return errors.As(err, &pe)
}

// PanicError reports a panic raised by a leaf body while a task ran.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task: leaf panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it was an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
