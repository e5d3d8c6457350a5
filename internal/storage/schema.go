// ABOUTME: SQLite schema for adult and minor measurement history.
// ABOUTME: The version is tracked in PRAGMA user_version.
package storage

const schemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS adult_measurements (
	id TEXT PRIMARY KEY,
	weight_kg REAL NOT NULL CHECK (weight_kg > 0),
	height_cm REAL NOT NULL CHECK (height_cm > 0),
	bmi REAL NOT NULL CHECK (bmi > 0),
	recorded_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS minor_measurements (
	id TEXT PRIMARY KEY,
	weight_kg REAL NOT NULL CHECK (weight_kg > 0),
	height_cm REAL NOT NULL CHECK (height_cm > 0),
	bmi REAL NOT NULL CHECK (bmi > 0),
	birth_date TEXT,
	sex TEXT NOT NULL CHECK (sex IN ('male', 'female')),
	age_months INTEGER NOT NULL CHECK (age_months >= 0),
	percentile REAL NOT NULL CHECK (percentile >= 0 AND percentile <= 100),
	interpretation TEXT NOT NULL,
	recorded_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_adult_recorded ON adult_measurements(recorded_at DESC);
CREATE INDEX IF NOT EXISTS idx_minor_recorded ON minor_measurements(recorded_at DESC);
`
