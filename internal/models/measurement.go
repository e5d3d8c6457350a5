// ABOUTME: Measurement models for adult BMI and minor BMI-for-age records.
// ABOUTME: Defines the Sex enum and constructors stamping IDs and timestamps.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sex selects the reference population for minors.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// Valid reports whether s is one of the two supported categories.
func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

// ParseSex accepts common spellings of the two supported categories.
func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "boy", "masculino":
		return SexMale, nil
	case "female", "f", "girl", "femenino":
		return SexFemale, nil
	}
	return "", &InvalidInputError{Op: "parse sex", Field: "sex", Value: s, Reason: "must be male or female"}
}

// AdultMeasurement is a persisted adult BMI reading. BMI is computed once at
// creation and never recomputed.
type AdultMeasurement struct {
	ID         uuid.UUID `json:"id" yaml:"id"`
	WeightKg   float64   `json:"weight_kg" yaml:"weight_kg"`
	HeightCm   float64   `json:"height_cm" yaml:"height_cm"`
	BMI        float64   `json:"bmi" yaml:"bmi"`
	RecordedAt time.Time `json:"recorded_at" yaml:"recorded_at"`
}

// NewAdultMeasurement creates an AdultMeasurement with a generated UUID
// recorded now.
func NewAdultMeasurement(weightKg, heightCm, bmi float64) *AdultMeasurement {
	return &AdultMeasurement{
		ID:         uuid.New(),
		WeightKg:   weightKg,
		HeightCm:   heightCm,
		BMI:        bmi,
		RecordedAt: time.Now(),
	}
}

// WithRecordedAt sets a custom recorded_at timestamp.
func (m *AdultMeasurement) WithRecordedAt(t time.Time) *AdultMeasurement {
	m.RecordedAt = t
	return m
}

// MinorMeasurement is a persisted BMI-for-age reading for ages 5-19.
type MinorMeasurement struct {
	ID             uuid.UUID  `json:"id" yaml:"id"`
	WeightKg       float64    `json:"weight_kg" yaml:"weight_kg"`
	HeightCm       float64    `json:"height_cm" yaml:"height_cm"`
	BMI            float64    `json:"bmi" yaml:"bmi"`
	BirthDate      *time.Time `json:"birth_date,omitempty" yaml:"birth_date,omitempty"`
	Sex            Sex        `json:"sex" yaml:"sex"`
	AgeMonths      int        `json:"age_months" yaml:"age_months"`
	Percentile     float64    `json:"percentile" yaml:"percentile"`
	Interpretation string     `json:"interpretation" yaml:"interpretation"`
	RecordedAt     time.Time  `json:"recorded_at" yaml:"recorded_at"`
}

// NewMinorMeasurement creates a MinorMeasurement with a generated UUID
// recorded now.
func NewMinorMeasurement(sex Sex, ageMonths int, weightKg, heightCm, bmi, percentile float64, interpretation string) *MinorMeasurement {
	return &MinorMeasurement{
		ID:             uuid.New(),
		WeightKg:       weightKg,
		HeightCm:       heightCm,
		BMI:            bmi,
		Sex:            sex,
		AgeMonths:      ageMonths,
		Percentile:     percentile,
		Interpretation: interpretation,
		RecordedAt:     time.Now(),
	}
}

// WithRecordedAt sets a custom recorded_at timestamp.
func (m *MinorMeasurement) WithRecordedAt(t time.Time) *MinorMeasurement {
	m.RecordedAt = t
	return m
}

// WithBirthDate records the birth date the age was derived from.
func (m *MinorMeasurement) WithBirthDate(t time.Time) *MinorMeasurement {
	m.BirthDate = &t
	return m
}
