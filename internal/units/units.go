// ABOUTME: Conversions between metric and imperial body measurements.
// ABOUTME: Normalizes raw readings to kilograms and centimeters for the engine.
package units

import (
	"math"
	"strconv"
	"strings"

	"github.com/harperreed/bmi/internal/models"
)

const (
	lbPerKg = 2.20462
	cmPerIn = 2.54
	inPerFt = 12
)

// System is a unit system for presenting and entering measurements.
type System string

const (
	Metric   System = "metric"
	Imperial System = "imperial"
)

// imperialCountries use pounds and feet/inches for body measurements in
// everyday life, even where the official system is metric.
var imperialCountries = map[string]bool{
	"US": true, "LR": true, "MM": true,
	"GB": true, "CA": true, "IN": true, "PK": true, "BD": true, "JM": true,
	"AE": true, "ZA": true, "KN": true, "LC": true, "TT": true, "BS": true,
	"BB": true, "AG": true, "GD": true, "GY": true, "BZ": true,
}

// SystemForCountry returns the customary unit system for an ISO 3166-1
// alpha-2 country code.
func SystemForCountry(code string) System {
	if imperialCountries[strings.ToUpper(strings.TrimSpace(code))] {
		return Imperial
	}
	return Metric
}

// ParseSystem parses "metric" or "imperial" (case-insensitive).
func ParseSystem(s string) (System, error) {
	switch System(strings.ToLower(strings.TrimSpace(s))) {
	case Metric:
		return Metric, nil
	case Imperial:
		return Imperial, nil
	}
	return "", &models.InvalidInputError{Op: "parse unit system", Field: "units", Value: s, Reason: "must be metric or imperial"}
}

// WeightUnit returns the display unit for weights in this system.
func (s System) WeightUnit() string {
	if s == Imperial {
		return "lb"
	}
	return "kg"
}

// HeightUnit returns the display unit for heights in this system.
func (s System) HeightUnit() string {
	if s == Imperial {
		return "in"
	}
	return "cm"
}

func KgToLb(kg float64) float64 { return kg * lbPerKg }

func LbToKg(lb float64) float64 { return lb / lbPerKg }

func InToCm(inches float64) float64 { return inches * cmPerIn }

func CmToIn(cm float64) float64 { return cm / cmPerIn }

// FeetInchesToCm converts a feet-and-inches height to centimeters.
func FeetInchesToCm(feet int, inches float64) float64 {
	return (float64(feet)*inPerFt + inches) * cmPerIn
}

// CmToFeetInches splits a centimeter height into whole feet and the
// remaining inches.
func CmToFeetInches(cm float64) (int, float64) {
	total := cm / cmPerIn
	feet := math.Floor(total / inPerFt)
	return int(feet), math.Mod(total, inPerFt)
}

// WeightToKg normalizes a weight reading in the given system to kilograms.
func WeightToKg(v float64, sys System) float64 {
	if sys == Imperial {
		return LbToKg(v)
	}
	return v
}

// HeightToCm normalizes a height reading in the given system to
// centimeters. Imperial heights are total inches.
func HeightToCm(v float64, sys System) float64 {
	if sys == Imperial {
		return InToCm(v)
	}
	return v
}

// Convert converts v between the body units kg, lb, cm and in. Unit names
// are case-insensitive.
func Convert(v float64, from, to string) (float64, error) {
	from = strings.ToLower(strings.TrimSpace(from))
	to = strings.ToLower(strings.TrimSpace(to))

	switch {
	case from == "kg" && to == "lb":
		return KgToLb(v), nil
	case from == "lb" && to == "kg":
		return LbToKg(v), nil
	case from == "cm" && to == "in":
		return CmToIn(v), nil
	case from == "in" && to == "cm":
		return InToCm(v), nil
	case from == to && (from == "kg" || from == "lb" || from == "cm" || from == "in"):
		return v, nil
	}
	return 0, &models.InvalidInputError{
		Op:     "convert units",
		Field:  "unit pair",
		Value:  from + "->" + to,
		Reason: "supported: kg<->lb, cm<->in",
	}
}

// ParseDecimal parses a number written with either '.' or ',' as the
// decimal separator.
func ParseDecimal(s string) (float64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &models.InvalidInputError{Op: "parse decimal", Field: "number", Value: s, Reason: "not a number"}
	}
	return v, nil
}
