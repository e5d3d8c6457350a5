// ABOUTME: Repository interface for BMI measurement history.
// ABOUTME: Defines the storage contract shared by sqlite, markdown and charm backends.
package storage

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/harperreed/bmi/internal/models"
)

var (
	// ErrNotFound is returned when no measurement matches an ID or prefix.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguous is returned when a prefix matches more than one measurement.
	ErrAmbiguous = errors.New("ambiguous prefix")
)

// Repository defines the storage interface for measurement history.
// List operations return the most recent measurements first; a limit of
// zero or less returns everything. Failures are wrapped in
// models.StorageError.
type Repository interface {
	SaveAdult(m *models.AdultMeasurement) error
	SaveMinor(m *models.MinorMeasurement) error
	ListAdultHistory(limit int) ([]*models.AdultMeasurement, error)
	ListMinorHistory(limit int) ([]*models.MinorMeasurement, error)

	ClearAdultHistory() error
	ClearMinorHistory() error
	ClearAll() error

	// DeleteMeasurement removes one adult or minor record by full ID or
	// unique ID prefix.
	DeleteMeasurement(idOrPrefix string) error

	GetAllData() (*ExportData, error)
	ImportData(data *ExportData) error

	Close() error
}

// IsFullUUID reports whether s has the canonical 36-character UUID shape.
func IsFullUUID(s string) bool {
	return len(s) == 36 && strings.Count(s, "-") == 4
}

// MatchID reports whether id matches idOrPrefix, exactly for a full UUID
// and by prefix otherwise. An empty prefix matches nothing.
func MatchID(id, idOrPrefix string) bool {
	if idOrPrefix == "" {
		return false
	}
	if IsFullUUID(idOrPrefix) {
		return id == idOrPrefix
	}
	return strings.HasPrefix(id, idOrPrefix)
}

// PickOne resolves a list of matching IDs to exactly one.
func PickOne(idOrPrefix string, matches []string) (string, error) {
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w %s: matches %d records", ErrAmbiguous, idOrPrefix, len(matches))
	}
}

// ClearAllData clears both histories in r.
func ClearAllData(r Repository) error {
	if err := r.ClearAdultHistory(); err != nil {
		return err
	}
	return r.ClearMinorHistory()
}

// SortAdults orders adults most recent first.
func SortAdults(ms []*models.AdultMeasurement) {
	sort.SliceStable(ms, func(i, j int) bool {
		return ms[i].RecordedAt.After(ms[j].RecordedAt)
	})
}

// SortMinors orders minors most recent first.
func SortMinors(ms []*models.MinorMeasurement) {
	sort.SliceStable(ms, func(i, j int) bool {
		return ms[i].RecordedAt.After(ms[j].RecordedAt)
	})
}

func limitSlice[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}

// LimitAdults truncates ms to limit when limit is positive.
func LimitAdults(ms []*models.AdultMeasurement, limit int) []*models.AdultMeasurement {
	return limitSlice(ms, limit)
}

// LimitMinors truncates ms to limit when limit is positive.
func LimitMinors(ms []*models.MinorMeasurement, limit int) []*models.MinorMeasurement {
	return limitSlice(ms, limit)
}
