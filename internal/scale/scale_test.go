// ABOUTME: Tests for display ranges and gauge positioning.
// ABOUTME: Covers segment interpolation, clamping, and range validation.
package scale

import (
	"math"
	"testing"
)

func TestBuiltinRangesValid(t *testing.T) {
	for _, r := range []DisplayRange{AdultRange(), MinorRange()} {
		if err := r.Validate(); err != nil {
			t.Errorf("%s: %v", r.Name, err)
		}
	}
}

func TestMinorWidths(t *testing.T) {
	want := []float64{0.15, 0.55, 0.20, 0.10}
	for i, s := range MinorRange().Segments {
		if s.Width != want[i] {
			t.Errorf("segment %s width = %v, want %v", s.Label, s.Width, want[i])
		}
	}
}

func TestPositionAdult(t *testing.T) {
	r := AdultRange()
	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"below range", -3, 0},
		{"zero", 0, 0},
		{"normal start", 18.5, 1.0 / 6},
		{"mid normal", 21.75, 1.0/6 + 0.5/6},
		{"overweight start", 25, 2.0 / 6},
		{"obesity 3 start", 40, 5.0 / 6},
		{"mid obesity 3", 45, 5.0/6 + 0.5/6},
		{"at max", 50, 1},
		{"above range", 72, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Position(tt.value, r)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Position(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestPositionMinor(t *testing.T) {
	r := MinorRange()
	tests := []struct {
		value float64
		want  float64
	}{
		{0, 0},
		{1.5, 0.075},
		{3, 0.15},
		{44, 0.15 + 0.275},
		{85, 0.70},
		{91, 0.80},
		{97, 0.90},
		{100, 1},
		{150, 1},
	}

	for _, tt := range tests {
		got := Position(tt.value, r)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Position(%v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestPositionMonotonic(t *testing.T) {
	r := AdultRange()
	prev := -1.0
	for v := -5.0; v <= 60; v += 0.1 {
		got := Position(v, r)
		if got < 0 || got > 1 {
			t.Fatalf("Position(%v) = %v outside [0,1]", v, got)
		}
		if got < prev {
			t.Fatalf("Position decreased at %v: %v < %v", v, got, prev)
		}
		prev = got
	}
}

func TestPositionDegenerate(t *testing.T) {
	if got := Position(10, DisplayRange{}); got != 0 {
		t.Errorf("empty range position = %v, want 0", got)
	}
	if got := Position(math.NaN(), AdultRange()); got != 0 {
		t.Errorf("NaN position = %v, want 0", got)
	}
}

func TestPositionUnnormalizedWidths(t *testing.T) {
	r := DisplayRange{Segments: []Segment{
		{Label: "a", Min: 0, Max: 10, Width: 1},
		{Label: "b", Min: 10, Max: 20, Width: 3},
	}}
	if got := Position(10, r); math.Abs(got-0.25) > 1e-9 {
		t.Errorf("Position = %v, want 0.25", got)
	}
	if err := r.Validate(); err == nil {
		t.Error("expected width-sum validation error")
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		r    DisplayRange
	}{
		{"empty", DisplayRange{Name: "x"}},
		{"inverted", DisplayRange{Segments: []Segment{{Label: "a", Min: 5, Max: 1, Width: 1}}}},
		{"zero width", DisplayRange{Segments: []Segment{{Label: "a", Min: 0, Max: 1, Width: 0}}}},
		{"gap", DisplayRange{Segments: []Segment{
			{Label: "a", Min: 0, Max: 1, Width: 0.5},
			{Label: "b", Min: 2, Max: 3, Width: 0.5},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.r.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLocate(t *testing.T) {
	r := AdultRange()
	tests := []struct {
		value float64
		want  string
	}{
		{10, "underweight"},
		{18.5, "normal"},
		{39.99, "obesity_2"},
		{40, "obesity_3"},
		{90, "obesity_3"},
	}
	for _, tt := range tests {
		s, ok := Locate(tt.value, r)
		if !ok || s.Label != tt.want {
			t.Errorf("Locate(%v) = %s, want %s", tt.value, s.Label, tt.want)
		}
	}
	if _, ok := Locate(1, DisplayRange{}); ok {
		t.Error("expected no segment for empty range")
	}
}
