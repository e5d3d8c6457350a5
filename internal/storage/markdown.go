// ABOUTME: MarkdownStore keeps each measurement in its own markdown file.
// ABOUTME: Records live in YAML front matter under date-sharded adults/ and minors/ directories.

package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/bmi/internal/models"
	"github.com/harperreed/bmi/internal/percentile"
	"gopkg.in/yaml.v3"
)

const backendMarkdown = "markdown"

// MarkdownStore provides file-based storage for measurement history.
type MarkdownStore struct {
	dataDir string
}

var _ Repository = (*MarkdownStore)(nil)

// NewMarkdownStore creates a markdown-backed store rooted at dataDir.
func NewMarkdownStore(dataDir string) (*MarkdownStore, error) {
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &MarkdownStore{dataDir: dataDir}, nil
}

// Close is a no-op for MarkdownStore.
func (s *MarkdownStore) Close() error {
	return nil
}

func (s *MarkdownStore) adultsDir() string {
	return filepath.Join(s.dataDir, "adults")
}

func (s *MarkdownStore) minorsDir() string {
	return filepath.Join(s.dataDir, "minors")
}

// recordPath returns root/YYYY/MM/YYYY-MM-DD-<kind>-<id_prefix>.md.
func recordPath(root, kind string, recordedAt time.Time, id uuid.UUID) string {
	t := recordedAt.UTC()
	return filepath.Join(root, t.Format("2006"), t.Format("01"),
		fmt.Sprintf("%s-%s-%s.md", t.Format(dateFormat), kind, id.String()[:8]))
}

type adultFrontmatter struct {
	ID         string  `yaml:"id"`
	WeightKg   float64 `yaml:"weight_kg"`
	HeightCm   float64 `yaml:"height_cm"`
	BMI        float64 `yaml:"bmi"`
	RecordedAt string  `yaml:"recorded_at"`
}

type minorFrontmatter struct {
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

func adultFromFrontmatter(fm *adultFrontmatter) (*models.AdultMeasurement, error) {
	id, err := uuid.Parse(fm.ID)
	if err != nil {
		return nil, fmt.Errorf("parse adult ID %q: %w", fm.ID, err)
	}
	recordedAt, err := parseTime(fm.RecordedAt)
	if err != nil {
		return nil, fmt.Errorf("parse recorded_at %q: %w", fm.RecordedAt, err)
	}
	return &models.AdultMeasurement{
		ID:         id,
		WeightKg:   fm.WeightKg,
		HeightCm:   fm.HeightCm,
		BMI:        fm.BMI,
		RecordedAt: recordedAt,
	}, nil
}

func minorFromFrontmatter(fm *minorFrontmatter) (*models.MinorMeasurement, error) {
	id, err := uuid.Parse(fm.ID)
	if err != nil {
		return nil, fmt.Errorf("parse minor ID %q: %w", fm.ID, err)
	}
	recordedAt, err := parseTime(fm.RecordedAt)
	if err != nil {
		return nil, fmt.Errorf("parse recorded_at %q: %w", fm.RecordedAt, err)
	}

	m := &models.MinorMeasurement{
		ID:             id,
		WeightKg:       fm.WeightKg,
		HeightCm:       fm.HeightCm,
		BMI:            fm.BMI,
		Sex:            models.Sex(fm.Sex),
		AgeMonths:      fm.AgeMonths,
		Percentile:     fm.Percentile,
		Interpretation: fm.Interpretation,
		RecordedAt:     recordedAt,
	}
	if fm.BirthDate != "" {
		b, err := time.Parse(dateFormat, fm.BirthDate)
		if err != nil {
			return nil, fmt.Errorf("parse birth_date %q: %w", fm.BirthDate, err)
		}
		m.BirthDate = &b
	}
	return m, nil
}

// readRecord decodes the front matter of the file at path into fm.
func readRecord(path string, fm any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	yamlStr, _ := parseFrontmatter(string(data))
	if yamlStr == "" {
		return fmt.Errorf("no frontmatter in %s", path)
	}
	if err := yaml.Unmarshal([]byte(yamlStr), fm); err != nil {
		return fmt.Errorf("parse frontmatter in %s: %w", path, err)
	}
	return nil
}

// writeNew renders fm and body to path, refusing to overwrite an existing record.
func writeNew(path string, fm any, body string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("record already exists: %s", filepath.Base(path))
	}

	content, err := renderFrontmatter(fm, body)
	if err != nil {
		return fmt.Errorf("render record: %w", err)
	}
	return atomicWrite(path, []byte(content))
}

// SaveAdult stores an adult measurement as a markdown file.
func (s *MarkdownStore) SaveAdult(m *models.AdultMeasurement) error {
	fm := adultFrontmatter{
		ID:         m.ID.String(),
		WeightKg:   m.WeightKg,
		HeightCm:   m.HeightCm,
		BMI:        m.BMI,
		RecordedAt: formatTime(m.RecordedAt),
	}
	body := fmt.Sprintf("\nBMI %.2f (%.1f kg, %.1f cm)\n", m.BMI, m.WeightKg, m.HeightCm)

	path := recordPath(s.adultsDir(), "adult", m.RecordedAt, m.ID)
	return models.WrapStorage(backendMarkdown, "save adult", writeNew(path, &fm, body))
}

// SaveMinor stores a minor measurement as a markdown file.
func (s *MarkdownStore) SaveMinor(m *models.MinorMeasurement) error {
	fm := minorFrontmatter{
		ID:             m.ID.String(),
		Sex:            string(m.Sex),
		AgeMonths:      m.AgeMonths,
		WeightKg:       m.WeightKg,
		HeightCm:       m.HeightCm,
		BMI:            m.BMI,
		Percentile:     m.Percentile,
		Interpretation: m.Interpretation,
		RecordedAt:     formatTime(m.RecordedAt),
	}
	if m.BirthDate != nil {
		fm.BirthDate = m.BirthDate.Format(dateFormat)
	}
	body := fmt.Sprintf("\nBMI %.2f, percentile %s (%s)\n", m.BMI, percentile.Format(m.Percentile), m.Interpretation)

	path := recordPath(s.minorsDir(), "minor", m.RecordedAt, m.ID)
	return models.WrapStorage(backendMarkdown, "save minor", writeNew(path, &fm, body))
}

// walkRecords calls fn for every markdown file under root.
func walkRecords(root string, fn func(path string) error) error {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}

	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		return fn(path)
	})
}

func (s *MarkdownStore) adults() (map[string]*models.AdultMeasurement, error) {
	out := make(map[string]*models.AdultMeasurement)
	err := walkRecords(s.adultsDir(), func(path string) error {
		var fm adultFrontmatter
		if err := readRecord(path, &fm); err != nil {
			return err
		}
		m, err := adultFromFrontmatter(&fm)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		out[path] = m
		return nil
	})
	return out, err
}

func (s *MarkdownStore) minors() (map[string]*models.MinorMeasurement, error) {
	out := make(map[string]*models.MinorMeasurement)
	err := walkRecords(s.minorsDir(), func(path string) error {
		var fm minorFrontmatter
		if err := readRecord(path, &fm); err != nil {
			return err
		}
		m, err := minorFromFrontmatter(&fm)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		out[path] = m
		return nil
	})
	return out, err
}

// ListAdultHistory returns adult measurements, most recent first.
func (s *MarkdownStore) ListAdultHistory(limit int) ([]*models.AdultMeasurement, error) {
	byPath, err := s.adults()
	if err != nil {
		return nil, models.WrapStorage(backendMarkdown, "list adults", err)
	}

	ms := make([]*models.AdultMeasurement, 0, len(byPath))
	for _, m := range byPath {
		ms = append(ms, m)
	}
	SortAdults(ms)
	return LimitAdults(ms, limit), nil
}

// ListMinorHistory returns minor measurements, most recent first.
func (s *MarkdownStore) ListMinorHistory(limit int) ([]*models.MinorMeasurement, error) {
	byPath, err := s.minors()
	if err != nil {
		return nil, models.WrapStorage(backendMarkdown, "list minors", err)
	}

	ms := make([]*models.MinorMeasurement, 0, len(byPath))
	for _, m := range byPath {
		ms = append(ms, m)
	}
	SortMinors(ms)
	return LimitMinors(ms, limit), nil
}

// ClearAdultHistory removes every adult record file.
func (s *MarkdownStore) ClearAdultHistory() error {
	return models.WrapStorage(backendMarkdown, "clear adults", os.RemoveAll(s.adultsDir()))
}

// ClearMinorHistory removes every minor record file.
func (s *MarkdownStore) ClearMinorHistory() error {
	return models.WrapStorage(backendMarkdown, "clear minors", os.RemoveAll(s.minorsDir()))
}

// ClearAll removes both histories.
func (s *MarkdownStore) ClearAll() error {
	return ClearAllData(s)
}

// DeleteMeasurement removes the record file whose ID matches idOrPrefix.
func (s *MarkdownStore) DeleteMeasurement(idOrPrefix string) error {
	pathOf := make(map[string]string)
	var matches []string

	adults, err := s.adults()
	if err != nil {
		return models.WrapStorage(backendMarkdown, "delete measurement", err)
	}
	for path, m := range adults {
		if id := m.ID.String(); MatchID(id, idOrPrefix) {
			pathOf[id] = path
			matches = append(matches, id)
		}
	}

	minors, err := s.minors()
	if err != nil {
		return models.WrapStorage(backendMarkdown, "delete measurement", err)
	}
	for path, m := range minors {
		if id := m.ID.String(); MatchID(id, idOrPrefix) {
			pathOf[id] = path
			matches = append(matches, id)
		}
	}

	id, err := PickOne(idOrPrefix, matches)
	if err != nil {
		return models.WrapStorage(backendMarkdown, "delete measurement", err)
	}

	err = os.Remove(pathOf[id])
	if errors.Is(err, os.ErrNotExist) {
		err = fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	return models.WrapStorage(backendMarkdown, "delete measurement", err)
}

// GetAllData retrieves all data for export.
func (s *MarkdownStore) GetAllData() (*ExportData, error) {
	return CollectAll(s)
}

// ImportData imports data from an export document.
func (s *MarkdownStore) ImportData(data *ExportData) error {
	return ImportAll(s, data)
}
