// ABOUTME: Tests for BMI computation.
// ABOUTME: Covers reference scenarios, monotonicity, and input validation.
package bmi

import (
	"errors"
	"math"
	"testing"

	"github.com/harperreed/bmi/internal/models"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name   string
		weight float64
		height float64
		want   float64
	}{
		{"adult normal", 70, 175, 22.86},
		{"adult obesity 3", 120, 170, 41.52},
		{"minor scenario", 40, 140, 20.41},
		{"exactly 1m", 25, 100, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.weight, tt.height)
			if err != nil {
				t.Fatalf("Compute unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 0.005 {
				t.Errorf("Compute(%v, %v) = %v, want ~%v", tt.weight, tt.height, got, tt.want)
			}
		})
	}
}

func TestComputeInvalid(t *testing.T) {
	tests := []struct {
		name   string
		weight float64
		height float64
	}{
		{"zero weight", 0, 170},
		{"negative weight", -5, 170},
		{"zero height", 70, 0},
		{"negative height", 70, -170},
		{"nan weight", math.NaN(), 170},
		{"infinite height", 70, math.Inf(1)},
		{"overflows to infinity", 1e300, 1e-300},
		{"underflows to zero", 1e-300, 1e300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.weight, tt.height)
			if !errors.Is(err, models.ErrInvalidInput) {
				t.Errorf("Compute(%v, %v) error = %v, want ErrInvalidInput", tt.weight, tt.height, err)
			}
		})
	}
}

func TestMonotonicity(t *testing.T) {
	prev := 0.0
	for w := 30.0; w <= 150; w += 2.5 {
		got, err := Compute(w, 170)
		if err != nil {
			t.Fatal(err)
		}
		if got <= prev {
			t.Fatalf("BMI not increasing in weight at %v: %v <= %v", w, got, prev)
		}
		prev = got
	}

	prev = math.Inf(1)
	for h := 120.0; h <= 210; h += 2.5 {
		got, err := Compute(70, h)
		if err != nil {
			t.Fatal(err)
		}
		if got >= prev {
			t.Fatalf("BMI not decreasing in height at %v: %v >= %v", h, got, prev)
		}
		prev = got
	}
}

func TestComputeIdempotent(t *testing.T) {
	a, _ := Compute(82.5, 181.3)
	b, _ := Compute(82.5, 181.3)
	if math.Float64bits(a) != math.Float64bits(b) {
		t.Errorf("repeated calls differ: %v vs %v", a, b)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		v      float64
		places int
		want   float64
	}{
		{22.857142, 2, 22.86},
		{22.857142, 1, 22.9},
		{41.522491, 2, 41.52},
		{96.45, 0, 96},
	}

	for _, tt := range tests {
		if got := Round(tt.v, tt.places); got != tt.want {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.v, tt.places, got, tt.want)
		}
	}
}
