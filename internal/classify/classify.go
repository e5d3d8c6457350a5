// ABOUTME: Clinical interpretation bands for adult BMI and minor percentiles.
// ABOUTME: Bands are half-open [lower, upper) except the last, which is closed.
package classify

import (
	"math"

	"github.com/harperreed/bmi/internal/models"
)

// Key identifies an interpretation band.
type Key string

const (
	AdultUnderweight Key = "underweight"
	AdultNormal      Key = "normal"
	AdultOverweight  Key = "overweight"
	AdultObesity1    Key = "obesity_1"
	AdultObesity2    Key = "obesity_2"
	AdultObesity3    Key = "obesity_3"

	MinorUnderweight Key = "underweight"
	MinorHealthy     Key = "healthy"
	MinorOverweight  Key = "overweight"
	MinorObesity     Key = "obesity"
)

// Band is a labeled interval. Upper is +Inf for an unbounded final band.
type Band struct {
	Key   Key     `json:"key"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

var adultBands = []Band{
	{AdultUnderweight, 0, 18.5},
	{AdultNormal, 18.5, 25},
	{AdultOverweight, 25, 30},
	{AdultObesity1, 30, 35},
	{AdultObesity2, 35, 40},
	{AdultObesity3, 40, math.Inf(1)},
}

var minorBands = []Band{
	{MinorUnderweight, 0, 3},
	{MinorHealthy, 3, 85},
	{MinorOverweight, 85, 97},
	{MinorObesity, 97, 100},
}

// AdultBands returns a copy of the six adult BMI bands in ascending order.
func AdultBands() []Band {
	return append([]Band(nil), adultBands...)
}

// MinorBands returns a copy of the four minor percentile bands in ascending
// order.
func MinorBands() []Band {
	return append([]Band(nil), minorBands...)
}

// Adult classifies an adult BMI.
func Adult(bmi float64) (Band, error) {
	if math.IsNaN(bmi) || bmi < 0 {
		return Band{}, models.NewInvalidInput("classify.Adult", "bmi", bmi, "must be >= 0")
	}
	return locate(adultBands, bmi), nil
}

// Minor classifies a BMI-for-age percentile in [0, 100].
func Minor(percentile float64) (Band, error) {
	if math.IsNaN(percentile) || percentile < 0 || percentile > 100 {
		return Band{}, models.NewInvalidInput("classify.Minor", "percentile", percentile, "must be within [0, 100]")
	}
	return locate(minorBands, percentile), nil
}

// locate assumes v lies within the bands' overall domain.
func locate(bands []Band, v float64) Band {
	for _, b := range bands[:len(bands)-1] {
		if v < b.Upper {
			return b
		}
	}
	return bands[len(bands)-1]
}
