// ABOUTME: Output helpers shared by the bmi CLI commands.
// ABOUTME: Formats weights, heights, band labels, gauges and time input.
package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/bmi/internal/classify"
	"github.com/harperreed/bmi/internal/engine"
	"github.com/harperreed/bmi/internal/percentile"
	"github.com/harperreed/bmi/internal/render"
	"github.com/harperreed/bmi/internal/scale"
	"github.com/harperreed/bmi/internal/units"
)

const gaugeWidth = 48

var bandLabels = map[classify.Key]string{
	classify.AdultUnderweight: "Underweight",
	classify.AdultNormal:      "Normal",
	classify.AdultOverweight:  "Overweight",
	classify.AdultObesity1:    "Obesity class I",
	classify.AdultObesity2:    "Obesity class II",
	classify.AdultObesity3:    "Obesity class III",
	classify.MinorHealthy:     "Healthy weight",
	classify.MinorObesity:     "Obesity",
}

func bandLabel(key classify.Key) string {
	if l, ok := bandLabels[key]; ok {
		return l
	}
	return string(key)
}

func adultKey(bmi float64) classify.Key {
	b, err := classify.Adult(bmi)
	if err != nil {
		return ""
	}
	return b.Key
}

func minorKey(p float64) classify.Key {
	b, err := classify.Minor(p)
	if err != nil {
		return ""
	}
	return b.Key
}

func bandColor(key classify.Key) *color.Color {
	switch key {
	case classify.AdultUnderweight:
		return color.New(color.FgBlue, color.Bold)
	case classify.AdultNormal, classify.MinorHealthy:
		return color.New(color.FgGreen, color.Bold)
	case classify.AdultOverweight:
		return color.New(color.FgYellow, color.Bold)
	case classify.AdultObesity3:
		return color.New(color.FgMagenta, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func formatWeight(kg float64, sys units.System) string {
	if sys == units.Imperial {
		return fmt.Sprintf("%.1f lb", units.KgToLb(kg))
	}
	return fmt.Sprintf("%.1f kg", kg)
}

func formatHeight(cm float64, sys units.System) string {
	if sys == units.Imperial {
		feet, inches := units.CmToFeetInches(cm)
		return fmt.Sprintf("%d'%.1f\"", feet, inches)
	}
	return fmt.Sprintf("%.1f cm", cm)
}

// parseHeight parses a height in the unit of sys. Imperial heights may be
// written as feet and inches, e.g. 5'9", 5'9 or 5ft9in, and are returned as
// total inches.
func parseHeight(s string, sys units.System) (float64, error) {
	if sys != units.Imperial {
		return units.ParseDecimal(s)
	}

	clean := strings.ToLower(strings.TrimSpace(s))
	clean = strings.ReplaceAll(clean, "ft", "'")
	clean = strings.TrimSuffix(clean, "in")
	clean = strings.TrimSuffix(clean, "\"")
	feetPart, inchPart, found := strings.Cut(clean, "'")
	if !found {
		return units.ParseDecimal(clean)
	}

	feet, err := strconv.Atoi(strings.TrimSpace(feetPart))
	if err != nil || feet < 0 {
		return 0, fmt.Errorf("invalid height: %s", s)
	}
	inches := 0.0
	if strings.TrimSpace(inchPart) != "" {
		if inches, err = units.ParseDecimal(inchPart); err != nil {
			return 0, fmt.Errorf("invalid height: %s", s)
		}
	}
	return float64(feet)*12 + inches, nil
}

func printGauge(w io.Writer, r scale.DisplayRange, value float64) {
	fmt.Fprintln(w, render.Gauge(r, value, gaugeWidth))
	fmt.Fprintln(w, render.Legend(r))
}

func printAdult(w io.Writer, r *engine.AdultResult, sys units.System) {
	fmt.Fprintf(w, "BMI %.2f  %s\n", r.BMI, bandColor(r.Key).Sprint(bandLabel(r.Key)))
	fmt.Fprintf(w, "%s  %s\n\n",
		color.New(color.Faint).Sprint("weight "+formatWeight(r.WeightKg, sys)),
		color.New(color.Faint).Sprint("height "+formatHeight(r.HeightCm, sys)))
	printGauge(w, scale.AdultRange(), r.BMI)
}

func printMinor(w io.Writer, r *engine.MinorResult, sys units.System) {
	fmt.Fprintf(w, "BMI %.2f  %s\n", r.BMI, bandColor(r.Key).Sprint(bandLabel(r.Key)))
	fmt.Fprintf(w, "Percentile P%s (z %+.2f), %s, %d years (%d months)\n",
		percentile.Format(r.Percentile), r.ZScore, r.Sex, r.AgeYears, r.AgeMonths)
	fmt.Fprintf(w, "%s  %s\n\n",
		color.New(color.Faint).Sprint("weight "+formatWeight(r.WeightKg, sys)),
		color.New(color.Faint).Sprint("height "+formatHeight(r.HeightCm, sys)))
	printGauge(w, scale.MinorRange(), r.Percentile)
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}
