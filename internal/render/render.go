// ABOUTME: Terminal rendering of gauge bars and history sparklines.
// ABOUTME: Colours segments with lipgloss using the hex colours of a display range.
package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/bmi/internal/scale"
)

const (
	barCell = "█"
	marker  = "▲"
)

var sparkTicks = []rune("▁▂▃▄▅▆▇█")

// segmentCells splits width cells across the segments of r in proportion to
// their widths. The last segment absorbs rounding so the total is exact.
func segmentCells(r scale.DisplayRange, width int) []int {
	cells := make([]int, len(r.Segments))
	if len(cells) == 0 {
		return cells
	}

	total := 0.0
	for _, s := range r.Segments {
		total += s.Width
	}

	used := 0
	for i, s := range r.Segments[:len(cells)-1] {
		n := int(math.Round(float64(width) * s.Width / total))
		if used+n > width {
			n = width - used
		}
		cells[i] = n
		used += n
	}
	cells[len(cells)-1] = width - used
	return cells
}

// Gauge draws r as a coloured bar of the given width with a marker line
// below it pointing at value.
func Gauge(r scale.DisplayRange, value float64, width int) string {
	if width < 1 || len(r.Segments) == 0 {
		return ""
	}

	var bar strings.Builder
	for i, n := range segmentCells(r, width) {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(r.Segments[i].Color))
		bar.WriteString(style.Render(strings.Repeat(barCell, n)))
	}

	col := MarkerColumn(r, value, width)
	markerLine := strings.Repeat(" ", col) + lipgloss.NewStyle().Bold(true).Render(marker)

	return bar.String() + "\n" + markerLine
}

// MarkerColumn is the zero-based cell under which Gauge places its marker.
func MarkerColumn(r scale.DisplayRange, value float64, width int) int {
	if width < 1 {
		return 0
	}
	col := int(math.Round(scale.Position(value, r) * float64(width-1)))
	return max(0, min(width-1, col))
}

// Legend lists the segments of r with coloured swatches.
func Legend(r scale.DisplayRange) string {
	parts := make([]string, 0, len(r.Segments))
	for _, s := range r.Segments {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render(barCell)
		parts = append(parts, swatch+" "+s.Label)
	}
	return strings.Join(parts, "  ")
}

// Sparkline renders values, oldest first, as a row of block characters
// scaled between the series minimum and maximum.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	out := make([]rune, len(values))
	top := len(sparkTicks) - 1
	for i, v := range values {
		idx := top / 2
		if hi > lo {
			idx = int(math.Round((v - lo) / (hi - lo) * float64(top)))
		}
		out[i] = sparkTicks[idx]
	}
	return string(out)
}
