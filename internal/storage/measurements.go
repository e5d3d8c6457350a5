// ABOUTME: Measurement CRUD operations for SQLite storage.
// ABOUTME: Implements Repository methods over the adult and minor tables.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/bmi/internal/models"
)

// timeFormat is fixed-width so recorded_at sorts lexically in SQL.
const (
	timeFormat = "2006-01-02T15:04:05.000000000Z07:00"
	dateFormat = "2006-01-02"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// SaveAdult stores an adult measurement.
func (d *DB) SaveAdult(m *models.AdultMeasurement) error {
	query := `
		INSERT INTO adult_measurements (id, weight_kg, height_cm, bmi, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := d.db.Exec(query,
		m.ID.String(),
		m.WeightKg,
		m.HeightCm,
		m.BMI,
		formatTime(m.RecordedAt),
	)
	return models.WrapStorage(backendSQLite, "save adult", err)
}

// SaveMinor stores a minor measurement.
func (d *DB) SaveMinor(m *models.MinorMeasurement) error {
	query := `
		INSERT INTO minor_measurements
			(id, weight_kg, height_cm, bmi, birth_date, sex, age_months, percentile, interpretation, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	var birth sql.NullString
	if m.BirthDate != nil {
		birth = sql.NullString{String: m.BirthDate.Format(dateFormat), Valid: true}
	}

	_, err := d.db.Exec(query,
		m.ID.String(),
		m.WeightKg,
		m.HeightCm,
		m.BMI,
		birth,
		string(m.Sex),
		m.AgeMonths,
		m.Percentile,
		m.Interpretation,
		formatTime(m.RecordedAt),
	)
	return models.WrapStorage(backendSQLite, "save minor", err)
}

// ListAdultHistory returns adult measurements, most recent first.
func (d *DB) ListAdultHistory(limit int) ([]*models.AdultMeasurement, error) {
	query := `
		SELECT id, weight_kg, height_cm, bmi, recorded_at
		FROM adult_measurements
		ORDER BY recorded_at DESC
	`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, models.WrapStorage(backendSQLite, "list adults", err)
	}
	defer rows.Close()

	ms, err := scanAdults(rows)
	return ms, models.WrapStorage(backendSQLite, "list adults", err)
}

// ListMinorHistory returns minor measurements, most recent first.
func (d *DB) ListMinorHistory(limit int) ([]*models.MinorMeasurement, error) {
	query := `
		SELECT id, weight_kg, height_cm, bmi, birth_date, sex, age_months, percentile, interpretation, recorded_at
		FROM minor_measurements
		ORDER BY recorded_at DESC
	`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, models.WrapStorage(backendSQLite, "list minors", err)
	}
	defer rows.Close()

	ms, err := scanMinors(rows)
	return ms, models.WrapStorage(backendSQLite, "list minors", err)
}

// ClearAdultHistory deletes every adult measurement.
func (d *DB) ClearAdultHistory() error {
	_, err := d.db.Exec("DELETE FROM adult_measurements")
	return models.WrapStorage(backendSQLite, "clear adults", err)
}

// ClearMinorHistory deletes every minor measurement.
func (d *DB) ClearMinorHistory() error {
	_, err := d.db.Exec("DELETE FROM minor_measurements")
	return models.WrapStorage(backendSQLite, "clear minors", err)
}

// ClearAll deletes both histories in one transaction.
func (d *DB) ClearAll() error {
	tx, err := d.db.Begin()
	if err != nil {
		return models.WrapStorage(backendSQLite, "clear all", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{"DELETE FROM adult_measurements", "DELETE FROM minor_measurements"} {
		if _, err := tx.Exec(stmt); err != nil {
			return models.WrapStorage(backendSQLite, "clear all", err)
		}
	}
	return models.WrapStorage(backendSQLite, "clear all", tx.Commit())
}

// DeleteMeasurement removes an adult or minor record by ID or unique prefix.
func (d *DB) DeleteMeasurement(idOrPrefix string) error {
	var matches []string
	tableOf := make(map[string]string)

	for _, table := range []string{"adult_measurements", "minor_measurements"} {
		ids, err := d.matchIDs(table, idOrPrefix)
		if err != nil {
			return models.WrapStorage(backendSQLite, "delete measurement", err)
		}
		for _, id := range ids {
			tableOf[id] = table
		}
		matches = append(matches, ids...)
	}

	id, err := PickOne(idOrPrefix, matches)
	if err != nil {
		return models.WrapStorage(backendSQLite, "delete measurement", err)
	}

	// Table names come from the fixed list above.
	_, err = d.db.Exec("DELETE FROM "+tableOf[id]+" WHERE id = ?", id)
	return models.WrapStorage(backendSQLite, "delete measurement", err)
}

func (d *DB) matchIDs(table, idOrPrefix string) ([]string, error) {
	if idOrPrefix == "" {
		return nil, nil
	}
	// Compared byte-wise so prefixes match the same IDs as MatchID.
	query := "SELECT id FROM " + table + " WHERE substr(id, 1, length(?1)) = ?1"
	if IsFullUUID(idOrPrefix) {
		query = "SELECT id FROM " + table + " WHERE id = ?1"
	}

	rows, err := d.db.Query(query, idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("resolve ID: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan ID: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanAdults(rows *sql.Rows) ([]*models.AdultMeasurement, error) {
	var out []*models.AdultMeasurement

	for rows.Next() {
		var m models.AdultMeasurement
		var idStr, recordedAt string

		if err := rows.Scan(&idStr, &m.WeightKg, &m.HeightCm, &m.BMI, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan adult: %w", err)
		}

		var err error
		if m.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("parse adult ID %q: %w", idStr, err)
		}
		if m.RecordedAt, err = parseTime(recordedAt); err != nil {
			return nil, fmt.Errorf("parse recorded_at %q: %w", recordedAt, err)
		}

		out = append(out, &m)
	}

	return out, rows.Err()
}

func scanMinors(rows *sql.Rows) ([]*models.MinorMeasurement, error) {
	var out []*models.MinorMeasurement

	for rows.Next() {
		var m models.MinorMeasurement
		var idStr, sex, recordedAt string
		var birth sql.NullString

		err := rows.Scan(&idStr, &m.WeightKg, &m.HeightCm, &m.BMI, &birth, &sex,
			&m.AgeMonths, &m.Percentile, &m.Interpretation, &recordedAt)
		if err != nil {
			return nil, fmt.Errorf("scan minor: %w", err)
		}

		if m.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("parse minor ID %q: %w", idStr, err)
		}
		if m.RecordedAt, err = parseTime(recordedAt); err != nil {
			return nil, fmt.Errorf("parse recorded_at %q: %w", recordedAt, err)
		}
		if birth.Valid {
			b, err := time.Parse(dateFormat, birth.String)
			if err != nil {
				return nil, fmt.Errorf("parse birth_date %q: %w", birth.String, err)
			}
			m.BirthDate = &b
		}
		m.Sex = models.Sex(sex)

		out = append(out, &m)
	}

	return out, rows.Err()
}
