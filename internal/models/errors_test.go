// ABOUTME: Tests for the typed error taxonomy.
// ABOUTME: Checks sentinel matching, unwrapping, and message formatting.
package models

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"invalid input", NewInvalidInput("bmi", "weight_kg", 0, "must be positive"), ErrInvalidInput},
		{"invalid date", &InvalidDateError{Op: "age", Reason: "birth date after reference date"}, ErrInvalidDate},
		{"out of range", &OutOfRangeError{Op: "percentile", Field: "age_months", Value: 240, Min: 60, Max: 228}, ErrOutOfRange},
		{"storage", &StorageError{Op: "save adult", Err: errors.New("disk full")}, ErrStorage},
	}

	sentinels := []error{ErrInvalidInput, ErrInvalidDate, ErrOutOfRange, ErrStorage}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			for _, s := range sentinels {
				if got := errors.Is(wrapped, s); got != (s == tt.sentinel) {
					t.Errorf("errors.Is(%v, %v) = %v", tt.err, s, got)
				}
			}
		})
	}
}

func TestInvalidInputMessage(t *testing.T) {
	err := NewInvalidInput("bmi.Compute", "height_cm", -1, "must be positive")
	want := `bmi.Compute: invalid height_cm "-1": must be positive`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestOutOfRangeMessage(t *testing.T) {
	err := &OutOfRangeError{Op: "percentile", Field: "age_months", Value: 240, Min: 60, Max: 228}
	if !strings.Contains(err.Error(), "240 outside [60, 228]") {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestWrapStorage(t *testing.T) {
	if WrapStorage("sqlite", "op", nil) != nil {
		t.Error("expected nil passthrough")
	}

	base := errors.New("boom")
	err := WrapStorage("sqlite", "save adult", base)
	if !errors.Is(err, ErrStorage) || !errors.Is(err, base) {
		t.Errorf("expected storage error wrapping base, got %v", err)
	}
	if err.Error() != "save adult (sqlite): boom" {
		t.Errorf("Error() = %q", err.Error())
	}

	again := WrapStorage("markdown", "outer", err)
	if again != err {
		t.Error("expected already-wrapped error to be returned unchanged")
	}
}
