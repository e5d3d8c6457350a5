// ABOUTME: Typed errors shared by the BMI engine and measurement stores.
// ABOUTME: Each error type matches its sentinel through errors.Is.
package models

import (
	"errors"
	"fmt"
)

// Sentinels for broad classification with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidDate  = errors.New("invalid date")
	ErrOutOfRange   = errors.New("out of range")
	ErrStorage      = errors.New("storage error")
)

// InvalidInputError reports a malformed or out-of-domain scalar input:
// non-positive weight or height, a percentile outside [0,100], an
// unsupported sex value, or unparseable numeric text.
type InvalidInputError struct {
	Op     string
	Field  string
	Value  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s", e.Op, e.Field)
	if e.Value != "" {
		msg += fmt.Sprintf(" %q", e.Value)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// NewInvalidInput builds an InvalidInputError for a numeric field.
func NewInvalidInput(op, field string, value float64, reason string) error {
	return &InvalidInputError{Op: op, Field: field, Value: fmt.Sprintf("%g", value), Reason: reason}
}

// InvalidDateError reports an unparseable date or a birth date that lies
// after the reference date.
type InvalidDateError struct {
	Op     string
	Input  string
	Reason string
	Err    error
}

func (e *InvalidDateError) Error() string {
	msg := e.Op + ": invalid date"
	if e.Input != "" {
		msg += fmt.Sprintf(" %q", e.Input)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *InvalidDateError) Unwrap() error { return e.Err }

func (e *InvalidDateError) Is(target error) bool { return target == ErrInvalidDate }

// OutOfRangeError reports a value outside a hard domain window, such as an
// age outside the pediatric reference data.
type OutOfRangeError struct {
	Op    string
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s: %s %g outside [%g, %g]", e.Op, e.Field, e.Value, e.Min, e.Max)
}

func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

// StorageError wraps a failure from a measurement store backend.
type StorageError struct {
	Op      string
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Backend != "" {
		return fmt.Sprintf("%s (%s): %v", e.Op, e.Backend, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// WrapStorage wraps err as a StorageError, passing nil through.
func WrapStorage(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Backend: backend, Err: err}
}
