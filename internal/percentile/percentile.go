// ABOUTME: BMI-for-age percentile computation using the LMS method.
// ABOUTME: Valid for ages 60-228 months; results are clamped away from 0 and 100.
package percentile

import (
	"math"
	"strconv"

	"github.com/harperreed/bmi/internal/models"
)

// Pediatric reference window, inclusive.
const (
	MinAgeMonths = 60
	MaxAgeMonths = 228
)

// The normal CDF never reaches 0 or 100, so results are held inside this
// window rather than rounding to a bound.
const (
	MinPercentile = 0.001
	MaxPercentile = 99.999
)

// Compute returns the BMI-for-age percentile against the default table.
func Compute(sex models.Sex, ageMonths int, bmi float64) (float64, error) {
	return Default().Percentile(sex, ageMonths, bmi)
}

// ZScore returns the BMI-for-age z-score against the default table.
func ZScore(sex models.Sex, ageMonths int, bmi float64) (float64, error) {
	return Default().ZScore(sex, ageMonths, bmi)
}

// ZScore validates the inputs and returns the LMS z-score of bmi.
func (t *Table) ZScore(sex models.Sex, ageMonths int, bmi float64) (float64, error) {
	if !sex.Valid() {
		return 0, &models.InvalidInputError{Op: "percentile", Field: "sex", Value: string(sex), Reason: "must be male or female"}
	}
	if ageMonths < MinAgeMonths || ageMonths > MaxAgeMonths {
		return 0, &models.OutOfRangeError{
			Op:    "percentile",
			Field: "age_months",
			Value: float64(ageMonths),
			Min:   MinAgeMonths,
			Max:   MaxAgeMonths,
		}
	}
	if math.IsNaN(bmi) || math.IsInf(bmi, 0) || bmi <= 0 {
		return 0, models.NewInvalidInput("percentile", "bmi", bmi, "must be a positive number")
	}

	p, err := t.Lookup(sex, ageMonths)
	if err != nil {
		return 0, err
	}
	return p.Z(bmi), nil
}

// Percentile returns Φ(z)*100 clamped to [MinPercentile, MaxPercentile].
func (t *Table) Percentile(sex models.Sex, ageMonths int, bmi float64) (float64, error) {
	z, err := t.ZScore(sex, ageMonths, bmi)
	if err != nil {
		return 0, err
	}
	pct := NormalCDF(z) * 100
	return math.Min(MaxPercentile, math.Max(MinPercentile, pct)), nil
}

// Z applies the LMS transform to x.
func (p LMS) Z(x float64) float64 {
	if p.L == 0 {
		return math.Log(x/p.M) / p.S
	}
	return (math.Pow(x/p.M, p.L) - 1) / (p.L * p.S)
}

// NormalCDF is the standard normal cumulative distribution function.
func NormalCDF(z float64) float64 {
	return 0.5 * math.Erfc(-z/math.Sqrt2)
}

// Truncate drops digits of p beyond places. Unlike rounding it never lifts
// a value onto the next band boundary, so P96.96 stays below P97.
func Truncate(p float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Floor(p*scale) / scale
}

// Format renders p at one decimal for display. Values beyond the
// one-decimal range render as "<0.1" or ">99.9".
func Format(p float64) string {
	switch {
	case p < 0.1:
		return "<0.1"
	case p > 99.9:
		return ">99.9"
	}
	return strconv.FormatFloat(Truncate(p, 1), 'f', 1, 64)
}
