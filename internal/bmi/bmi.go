// ABOUTME: Body Mass Index computation from metric weight and height.
// ABOUTME: Callers normalize imperial readings through the units package first.
package bmi

import (
	"math"

	"github.com/harperreed/bmi/internal/models"
)

// Compute returns weight_kg / (height_cm/100)^2.
func Compute(weightKg, heightCm float64) (float64, error) {
	if !positive(weightKg) {
		return 0, models.NewInvalidInput("bmi.Compute", "weight_kg", weightKg, "must be a positive number")
	}
	if !positive(heightCm) {
		return 0, models.NewInvalidInput("bmi.Compute", "height_cm", heightCm, "must be a positive number")
	}
	m := heightCm / 100
	v := weightKg / (m * m)
	if !positive(v) {
		return 0, models.NewInvalidInput("bmi.Compute", "bmi", v, "weight and height produce no finite BMI")
	}
	return v, nil
}

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
