// ABOUTME: SQLite-backed Repository: connection setup, data paths and schema versioning.
// ABOUTME: Uses modernc.org/sqlite (pure Go, no CGO required).
package storage

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/harperreed/bmi/internal/models"
	_ "modernc.org/sqlite"
)

const (
	backendSQLite = "sqlite"

	// DBFile is the SQLite file name inside a data directory.
	DBFile = "bmi.db"
)

// Applied by the driver to every new connection, busy_timeout first.
var connPragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
}

// DB is the SQLite-backed Repository.
type DB struct {
	db     *sql.DB
	dbPath string
}

var _ Repository = (*DB)(nil)

// Open opens or creates the history database at dbPath. A database written
// by a newer schema version is refused rather than modified.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, models.WrapStorage(backendSQLite, "create data directory", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, models.WrapStorage(backendSQLite, "open database", err)
	}
	// SQLite has a single writer.
	db.SetMaxOpenConns(1)

	d := &DB{db: db, dbPath: dbPath}
	if err := d.migrate(); err != nil {
		_ = db.Close()
		return nil, models.WrapStorage(backendSQLite, "initialize schema", err)
	}

	// The file exists only after the first statement has run.
	if err := os.Chmod(dbPath, 0600); err != nil {
		_ = db.Close()
		return nil, models.WrapStorage(backendSQLite, "set database permissions", err)
	}

	return d, nil
}

func dsn(path string) string {
	q := url.Values{}
	for _, p := range connPragmas {
		q.Add("_pragma", p)
	}
	return path + "?" + q.Encode()
}

// DataDir returns the default data directory following XDG base directory conventions.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "bmi")
}

// DBPath returns the database path inside dataDir.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}

// DefaultDBPath returns the database path inside DataDir.
func DefaultDBPath() string {
	return DBPath(DataDir())
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.dbPath
}

// SchemaVersion reports the schema version recorded in the database file.
func (d *DB) SchemaVersion() (int, error) {
	var v int
	if err := d.db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, models.WrapStorage(backendSQLite, "read schema version", err)
	}
	return v, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return models.WrapStorage(backendSQLite, "close", d.db.Close())
}

func (d *DB) migrate() error {
	var current int
	if err := d.db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if current > schemaVersion {
		return fmt.Errorf("%s has schema v%d, this build supports up to v%d", d.dbPath, current, schemaVersion)
	}
	if current == schemaVersion {
		return nil
	}

	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(schemaV1); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	// PRAGMA does not take bound parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}
