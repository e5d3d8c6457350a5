// ABOUTME: Data migration between measurement storage backends.
// ABOUTME: Copies adult and minor history from a source repository to a destination.

package storage

import (
	"fmt"
	"os"
)

// MigrateSummary holds counts of migrated records.
type MigrateSummary struct {
	Adults int
	Minors int
}

// MigrateData copies all history from src to dst. The destination should be
// empty; duplicate IDs fail the migration.
func MigrateData(src, dst Repository) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	adults, err := src.ListAdultHistory(0)
	if err != nil {
		return nil, fmt.Errorf("list source adults: %w", err)
	}
	for _, m := range adults {
		if err := dst.SaveAdult(m); err != nil {
			return nil, fmt.Errorf("save adult %s: %w", m.ID, err)
		}
		summary.Adults++
	}

	minors, err := src.ListMinorHistory(0)
	if err != nil {
		return nil, fmt.Errorf("list source minors: %w", err)
	}
	for _, m := range minors {
		if err := dst.SaveMinor(m); err != nil {
			return nil, fmt.Errorf("save minor %s: %w", m.ID, err)
		}
		summary.Minors++
	}

	return summary, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any entries.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
