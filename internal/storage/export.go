// ABOUTME: Export and import of measurement history.
// ABOUTME: Supports JSON, YAML and Markdown export and JSON import for any Repository.
package storage

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/harperreed/bmi/internal/bmi"
	"github.com/harperreed/bmi/internal/classify"
	"github.com/harperreed/bmi/internal/models"
	"github.com/harperreed/bmi/internal/percentile"
	"gopkg.in/yaml.v3"
)

const exportVersion = "1.0"

// ExportData is the full export document.
type ExportData struct {
	Version    string                     `json:"version" yaml:"version"`
	ExportedAt time.Time                  `json:"exported_at" yaml:"exported_at"`
	Tool       string                     `json:"tool" yaml:"tool"`
	Adults     []*models.AdultMeasurement `json:"adults" yaml:"adults"`
	Minors     []*models.MinorMeasurement `json:"minors" yaml:"minors"`
}

// CollectAll builds an ExportData from r's full history.
func CollectAll(r Repository) (*ExportData, error) {
	adults, err := r.ListAdultHistory(0)
	if err != nil {
		return nil, err
	}
	minors, err := r.ListMinorHistory(0)
	if err != nil {
		return nil, err
	}

	return &ExportData{
		Version:    exportVersion,
		ExportedAt: time.Now(),
		Tool:       "bmi",
		Adults:     adults,
		Minors:     minors,
	}, nil
}

// ImportAll saves every record in data into r.
func ImportAll(r Repository, data *ExportData) error {
	for _, m := range data.Adults {
		if err := r.SaveAdult(m); err != nil {
			return fmt.Errorf("import adult %s: %w", m.ID, err)
		}
	}
	for _, m := range data.Minors {
		if err := r.SaveMinor(m); err != nil {
			return fmt.Errorf("import minor %s: %w", m.ID, err)
		}
	}
	return nil
}

// GetAllData retrieves all data for export.
func (d *DB) GetAllData() (*ExportData, error) {
	return CollectAll(d)
}

// ImportData imports data from an export document.
func (d *DB) ImportData(data *ExportData) error {
	return ImportAll(d, data)
}

// ExportJSON exports r's history as indented JSON.
func ExportJSON(r Repository) ([]byte, error) {
	data, err := r.GetAllData()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports r's history as YAML with short IDs and rounded values.
func ExportYAML(r Repository) ([]byte, error) {
	data, err := r.GetAllData()
	if err != nil {
		return nil, err
	}

	doc := struct {
		Version    string      `yaml:"version"`
		ExportedAt string      `yaml:"exported_at"`
		Tool       string      `yaml:"tool"`
		Adults     []yamlAdult `yaml:"adults"`
		Minors     []yamlMinor `yaml:"minors"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Adults:     make([]yamlAdult, 0, len(data.Adults)),
		Minors:     make([]yamlMinor, 0, len(data.Minors)),
	}

	for _, m := range data.Adults {
		doc.Adults = append(doc.Adults, yamlAdult{
			ID:         shortID(m.ID.String()),
			WeightKg:   bmi.Round(m.WeightKg, 2),
			HeightCm:   bmi.Round(m.HeightCm, 2),
			BMI:        bmi.Round(m.BMI, 2),
			RecordedAt: m.RecordedAt.Format(time.RFC3339),
		})
	}
	for _, m := range data.Minors {
		ym := yamlMinor{
			ID:             shortID(m.ID.String()),
			Sex:            string(m.Sex),
			AgeMonths:      m.AgeMonths,
			WeightKg:       bmi.Round(m.WeightKg, 2),
			HeightCm:       bmi.Round(m.HeightCm, 2),
			BMI:            bmi.Round(m.BMI, 2),
			Percentile:     bmi.Round(m.Percentile, 2),
			Interpretation: m.Interpretation,
			RecordedAt:     m.RecordedAt.Format(time.RFC3339),
		}
		if m.BirthDate != nil {
			ym.BirthDate = m.BirthDate.Format(dateFormat)
		}
		doc.Minors = append(doc.Minors, ym)
	}

	return yaml.Marshal(doc)
}

type yamlAdult struct {
	ID         string  `yaml:"id"`
	WeightKg   float64 `yaml:"weight_kg"`
	HeightCm   float64 `yaml:"height_cm"`
	BMI        float64 `yaml:"bmi"`
	RecordedAt string  `yaml:"recorded_at"`
}

type yamlMinor struct {
	ID             string  `yaml:"id"`
	Sex            string  `yaml:"sex"`
	BirthDate      string  `yaml:"birth_date,omitempty"`
	AgeMonths      int     `yaml:"age_months"`
	WeightKg       float64 `yaml:"weight_kg"`
	HeightCm       float64 `yaml:"height_cm"`
	BMI            float64 `yaml:"bmi"`
	Percentile     float64 `yaml:"percentile"`
	Interpretation string  `yaml:"interpretation"`
	RecordedAt     string  `yaml:"recorded_at"`
}

// ExportMarkdown renders r's history as Markdown tables. When since is set,
// only measurements recorded at or after it are included.
func ExportMarkdown(r Repository, since *time.Time) (string, error) {
	adults, err := r.ListAdultHistory(0)
	if err != nil {
		return "", err
	}
	minors, err := r.ListMinorHistory(0)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# BMI Export - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	sb.WriteString("## Adults\n\n")
	sb.WriteString("| Date | Weight (kg) | Height (cm) | BMI |\n")
	sb.WriteString("|------|-------------|-------------|-----|\n")
	for _, m := range adults {
		if since != nil && m.RecordedAt.Before(*since) {
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %.2f |\n",
			m.RecordedAt.Format("2006-01-02 15:04"), m.WeightKg, m.HeightCm, m.BMI))
	}

	sb.WriteString("\n## Minors\n\n")
	sb.WriteString("| Date | Sex | Age (months) | BMI | Percentile | Interpretation |\n")
	sb.WriteString("|------|-----|--------------|-----|------------|----------------|\n")
	for _, m := range minors {
		if since != nil && m.RecordedAt.Before(*since) {
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %d | %.2f | %s | %s |\n",
			m.RecordedAt.Format("2006-01-02 15:04"), m.Sex, m.AgeMonths, m.BMI, percentile.Format(m.Percentile), m.Interpretation))
	}

	return sb.String(), nil
}

// ImportJSON imports an export document from JSON bytes into r.
func ImportJSON(r Repository, data []byte) (*ExportData, error) {
	var doc ExportData
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}
	if err := validateImport(&doc); err != nil {
		return nil, err
	}
	if err := r.ImportData(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// bmiTolerance absorbs rounding by external tools that re-serialize exports.
const bmiTolerance = 0.01

func validateImport(doc *ExportData) error {
	for i, m := range doc.Adults {
		if m == nil {
			return &models.InvalidInputError{Op: "import", Field: fmt.Sprintf("adults[%d]", i), Value: "null", Reason: "must be a measurement"}
		}
		if err := checkBMI(m.WeightKg, m.HeightCm, m.BMI); err != nil {
			return err
		}
	}
	for i, m := range doc.Minors {
		if m == nil {
			return &models.InvalidInputError{Op: "import", Field: fmt.Sprintf("minors[%d]", i), Value: "null", Reason: "must be a measurement"}
		}
		if !m.Sex.Valid() {
			return &models.InvalidInputError{Op: "import", Field: "sex", Value: string(m.Sex), Reason: "must be male or female"}
		}
		if err := checkBMI(m.WeightKg, m.HeightCm, m.BMI); err != nil {
			return err
		}
		if m.AgeMonths < 0 {
			return models.NewInvalidInput("import", "age_months", float64(m.AgeMonths), "must not be negative")
		}
		lo, hi := percentile.Default().Range(m.Sex)
		if m.AgeMonths < lo || m.AgeMonths > hi {
			return &models.OutOfRangeError{Op: "import", Field: "age_months", Value: float64(m.AgeMonths), Min: float64(lo), Max: float64(hi)}
		}
		band, err := classify.Minor(m.Percentile)
		if err != nil {
			return err
		}
		if m.Interpretation != string(band.Key) {
			return &models.InvalidInputError{Op: "import", Field: "interpretation", Value: m.Interpretation, Reason: fmt.Sprintf("percentile %g is %s", m.Percentile, band.Key)}
		}
	}
	return nil
}

// checkBMI verifies the stored BMI matches the stored weight and height.
func checkBMI(weightKg, heightCm, stored float64) error {
	want, err := bmi.Compute(weightKg, heightCm)
	if err != nil {
		return err
	}
	if math.IsNaN(stored) || math.Abs(want-stored) > bmiTolerance {
		return models.NewInvalidInput("import", "bmi", stored, fmt.Sprintf("does not match weight and height (%.2f)", want))
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
