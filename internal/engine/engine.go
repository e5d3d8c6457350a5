// ABOUTME: Evaluation pipeline turning raw readings into classified results.
// ABOUTME: Normalizes units, derives age, computes BMI, percentile, band and gauge position.
package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/harperreed/bmi/internal/age"
	"github.com/harperreed/bmi/internal/bmi"
	"github.com/harperreed/bmi/internal/classify"
	"github.com/harperreed/bmi/internal/models"
	"github.com/harperreed/bmi/internal/percentile"
	"github.com/harperreed/bmi/internal/scale"
	"github.com/harperreed/bmi/internal/units"
)

// Readings beyond these are rejected as implausible.
const (
	MaxWeightKg = 1000
	MaxHeightCm = 300
)

// A raw height at or below this is a height in metres (metric) or feet
// (imperial) rather than centimeters or inches.
const minRawHeight = 10

// AdultInput holds raw adult readings in Units. An empty Units means metric.
type AdultInput struct {
	Weight float64
	Height float64
	Units  units.System
}

// AdultResult is the outcome of an adult evaluation.
type AdultResult struct {
	WeightKg float64       `json:"weight_kg"`
	HeightCm float64       `json:"height_cm"`
	BMI      float64       `json:"bmi"`
	Band     classify.Band `json:"-"`
	Key      classify.Key  `json:"interpretation"`
	Position float64       `json:"position"`
}

// MinorInput holds raw readings for a BMI-for-age evaluation. When
// BirthDate is set the age is derived from it and ReferenceDate (today when
// zero). Otherwise AgeMonths is used as given, or AgeYears truncated to
// whole months.
type MinorInput struct {
	Weight        float64
	Height        float64
	Units         units.System
	Sex           models.Sex
	BirthDate     *time.Time
	ReferenceDate time.Time
	AgeMonths     int
	AgeYears      float64
}

// MinorResult is the outcome of a BMI-for-age evaluation.
type MinorResult struct {
	WeightKg   float64       `json:"weight_kg"`
	HeightCm   float64       `json:"height_cm"`
	BMI        float64       `json:"bmi"`
	Sex        models.Sex    `json:"sex"`
	BirthDate  *time.Time    `json:"birth_date,omitempty"`
	AgeMonths  int           `json:"age_months"`
	AgeYears   int           `json:"age_years"`
	ZScore     float64       `json:"z_score"`
	Percentile float64       `json:"percentile"`
	Band       classify.Band `json:"-"`
	Key        classify.Key  `json:"interpretation"`
	Position   float64       `json:"position"`
}

func normalize(op string, weight, height float64, sys units.System) (float64, float64, error) {
	switch sys {
	case "":
		sys = units.Metric
	case units.Metric, units.Imperial:
	default:
		return 0, 0, &models.InvalidInputError{Op: op, Field: "units", Value: string(sys), Reason: "must be metric or imperial"}
	}

	if height > 0 && height <= minRawHeight {
		hint := "looks like metres, enter centimeters (e.g. 175)"
		if sys == units.Imperial {
			hint = "looks like feet, enter total inches (e.g. 69)"
		}
		return 0, 0, models.NewInvalidInput(op, "height", height, hint)
	}

	kg, cm := units.WeightToKg(weight, sys), units.HeightToCm(height, sys)
	if kg > MaxWeightKg {
		return 0, 0, &models.OutOfRangeError{Op: op, Field: "weight_kg", Value: kg, Min: 0, Max: MaxWeightKg}
	}
	if cm > MaxHeightCm {
		return 0, 0, &models.OutOfRangeError{Op: op, Field: "height_cm", Value: cm, Min: 0, Max: MaxHeightCm}
	}
	return kg, cm, nil
}

func ageMonths(op string, in MinorInput) (int, error) {
	if in.AgeYears == 0 {
		if in.AgeMonths < 0 {
			return 0, models.NewInvalidInput(op, "age_months", float64(in.AgeMonths), "must not be negative")
		}
		return in.AgeMonths, nil
	}
	if in.AgeMonths != 0 {
		return 0, &models.InvalidInputError{Op: op, Field: "age", Value: fmt.Sprintf("%d months, %g years", in.AgeMonths, in.AgeYears), Reason: "give months or years, not both"}
	}
	if math.IsNaN(in.AgeYears) || math.IsInf(in.AgeYears, 0) || in.AgeYears < 0 {
		return 0, models.NewInvalidInput(op, "age_years", in.AgeYears, "must be a non-negative number")
	}
	if in.AgeYears*12 > math.MaxInt32 {
		return 0, &models.OutOfRangeError{Op: op, Field: "age_years", Value: in.AgeYears,
			Min: percentile.MinAgeMonths / 12.0, Max: percentile.MaxAgeMonths / 12.0}
	}
	return int(in.AgeYears * 12), nil
}

// EvaluateAdult computes BMI, its adult band, and its gauge position.
func EvaluateAdult(in AdultInput) (*AdultResult, error) {
	kg, cm, err := normalize("evaluate adult", in.Weight, in.Height, in.Units)
	if err != nil {
		return nil, err
	}

	value, err := bmi.Compute(kg, cm)
	if err != nil {
		return nil, err
	}

	band, err := classify.Adult(value)
	if err != nil {
		return nil, err
	}

	return &AdultResult{
		WeightKg: kg,
		HeightCm: cm,
		BMI:      value,
		Band:     band,
		Key:      band.Key,
		Position: scale.Position(value, scale.AdultRange()),
	}, nil
}

// EvaluateMinor computes BMI, BMI-for-age percentile, the percentile band,
// and the gauge position.
func EvaluateMinor(in MinorInput) (*MinorResult, error) {
	const op = "evaluate minor"

	if !in.Sex.Valid() {
		return nil, &models.InvalidInputError{Op: op, Field: "sex", Value: string(in.Sex), Reason: "must be male or female"}
	}

	kg, cm, err := normalize(op, in.Weight, in.Height, in.Units)
	if err != nil {
		return nil, err
	}

	var months, years int
	if in.BirthDate != nil {
		ref := in.ReferenceDate
		if ref.IsZero() {
			ref = time.Now()
		}
		if months, err = age.Months(*in.BirthDate, ref); err != nil {
			return nil, err
		}
		if years, err = age.Years(*in.BirthDate, ref); err != nil {
			return nil, err
		}
	} else {
		if months, err = ageMonths(op, in); err != nil {
			return nil, err
		}
		years = months / 12
	}

	value, err := bmi.Compute(kg, cm)
	if err != nil {
		return nil, err
	}

	z, err := percentile.ZScore(in.Sex, months, value)
	if err != nil {
		return nil, err
	}
	p, err := percentile.Compute(in.Sex, months, value)
	if err != nil {
		return nil, err
	}

	band, err := classify.Minor(p)
	if err != nil {
		return nil, err
	}

	return &MinorResult{
		WeightKg:   kg,
		HeightCm:   cm,
		BMI:        value,
		Sex:        in.Sex,
		BirthDate:  in.BirthDate,
		AgeMonths:  months,
		AgeYears:   years,
		ZScore:     z,
		Percentile: p,
		Band:       band,
		Key:        band.Key,
		Position:   scale.Position(p, scale.MinorRange()),
	}, nil
}

// ToAdultMeasurement builds the record persisted for r.
func ToAdultMeasurement(r *AdultResult) *models.AdultMeasurement {
	return models.NewAdultMeasurement(r.WeightKg, r.HeightCm, r.BMI)
}

// ToMinorMeasurement builds the record persisted for r.
func ToMinorMeasurement(r *MinorResult) *models.MinorMeasurement {
	m := models.NewMinorMeasurement(r.Sex, r.AgeMonths, r.WeightKg, r.HeightCm, r.BMI, r.Percentile, string(r.Key))
	if r.BirthDate != nil {
		m.WithBirthDate(*r.BirthDate)
	}
	return m
}
