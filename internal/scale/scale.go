// ABOUTME: Segmented display ranges and value positioning for gauge indicators.
// ABOUTME: Maps a BMI or percentile to a [0,1] position across proportional segments.
package scale

import (
	"fmt"
	"math"
)

// Segment is one coloured band of a display range. Width is its share of
// the total display width.
type Segment struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Width float64 `json:"width"`
	Color string  `json:"color"`
}

// DisplayRange is an ordered list of contiguous segments.
type DisplayRange struct {
	Name     string    `json:"name"`
	Segments []Segment `json:"segments"`
}

// AdultRange is the adult BMI gauge: six equal-width segments, with the
// open-ended obesity III band drawn up to BMI 50.
func AdultRange() DisplayRange {
	w := 1.0 / 6.0
	return DisplayRange{
		Name: "adult_bmi",
		Segments: []Segment{
			{Label: "underweight", Min: 0, Max: 18.5, Width: w, Color: "#2196F3"},
			{Label: "normal", Min: 18.5, Max: 25, Width: w, Color: "#4CAF50"},
			{Label: "overweight", Min: 25, Max: 30, Width: w, Color: "#FF9800"},
			{Label: "obesity_1", Min: 30, Max: 35, Width: w, Color: "#FF5722"},
			{Label: "obesity_2", Min: 35, Max: 40, Width: w, Color: "#D32F2F"},
			{Label: "obesity_3", Min: 40, Max: 50, Width: w, Color: "#7B1FA2"},
		},
	}
}

// MinorRange is the BMI-for-age percentile gauge.
func MinorRange() DisplayRange {
	return DisplayRange{
		Name: "minor_percentile",
		Segments: []Segment{
			{Label: "underweight", Min: 0, Max: 3, Width: 0.15, Color: "#2196F3"},
			{Label: "healthy", Min: 3, Max: 85, Width: 0.55, Color: "#4CAF50"},
			{Label: "overweight", Min: 85, Max: 97, Width: 0.20, Color: "#FF9800"},
			{Label: "obesity", Min: 97, Max: 100, Width: 0.10, Color: "#D32F2F"},
		},
	}
}

// Validate checks that segments are non-empty, ascending, contiguous, and
// that widths are positive and sum to 1.
func (r DisplayRange) Validate() error {
	if len(r.Segments) == 0 {
		return fmt.Errorf("display range %q has no segments", r.Name)
	}
	total := 0.0
	for i, s := range r.Segments {
		if s.Max <= s.Min {
			return fmt.Errorf("segment %q: max %g must exceed min %g", s.Label, s.Max, s.Min)
		}
		if s.Width <= 0 {
			return fmt.Errorf("segment %q: width must be positive", s.Label)
		}
		if i > 0 && s.Min != r.Segments[i-1].Max {
			return fmt.Errorf("segment %q does not start where %q ends", s.Label, r.Segments[i-1].Label)
		}
		total += s.Width
	}
	if math.Abs(total-1) > 1e-9 {
		return fmt.Errorf("display range %q widths sum to %g, want 1", r.Name, total)
	}
	return nil
}

// Position maps value onto r and returns a fraction in [0,1]. Values below
// the first segment clamp to 0 and values above the last clamp to 1.
func Position(value float64, r DisplayRange) float64 {
	segs := r.Segments
	if len(segs) == 0 || math.IsNaN(value) || value <= segs[0].Min {
		return 0
	}
	if value >= segs[len(segs)-1].Max {
		return 1
	}

	total := 0.0
	for _, s := range segs {
		total += s.Width
	}

	start := 0.0
	for _, s := range segs {
		if value < s.Min {
			return clamp01(start / total)
		}
		if value < s.Max {
			pos := start + (value-s.Min)/(s.Max-s.Min)*s.Width
			return clamp01(pos / total)
		}
		start += s.Width
	}
	return 1
}

// Locate returns the segment containing value, clamping to the first or
// last segment outside the range.
func Locate(value float64, r DisplayRange) (Segment, bool) {
	segs := r.Segments
	if len(segs) == 0 {
		return Segment{}, false
	}
	for _, s := range segs {
		if value < s.Max {
			return s, true
		}
	}
	return segs[len(segs)-1], true
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
