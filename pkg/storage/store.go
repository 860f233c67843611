// Package storage persists accounts, sessions and favorites in a single
// SQLite database.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/rubiojr/cinegrid/pkg/db"
	"github.com/rubiojr/cinegrid/pkg/log"
)

// DatabaseFile is the database file name inside the storage directory.
const DatabaseFile = "cinegrid.db"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

type Store struct {
	db     *sql.DB
	path   string
	logger *log.Logger
}

// OpenDir opens the database in storageDir, creating the directory if
// needed.
func OpenDir(storageDir string) (*Store, error) {
	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return Open(filepath.Join(storageDir, DatabaseFile))
}

// Open opens the database at dbPath and applies pending migrations.
func Open(dbPath string) (*Store, error) {
	s, err := openWithoutMigrations(dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.InitializeDatabase(s.db); err != nil {
		_ = s.db.Close()
		return nil, fmt.Errorf("migrating %s: %w", dbPath, err)
	}
	return s, nil
}

// OpenWithoutMigrations opens the database as is. The migrate command uses
// it to report status before applying anything.
func OpenWithoutMigrations(dbPath string) (*Store, error) {
	return openWithoutMigrations(dbPath)
}

func openWithoutMigrations(dbPath string) (*Store, error) {
	// Connection level pragmas go in the DSN so every pooled connection
	// gets them.
	dsn := "file:" + dbPath + "?_pragma=busy_timeout(30000)&_pragma=foreign_keys(1)"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -16000", // 16MB cache
		"PRAGMA temp_store = memory",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}

	return &Store{
		db:     conn,
		path:   dbPath,
		logger: log.ForService("storage"),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// MigrationStatus reports applied and pending schema migrations.
func (s *Store) MigrationStatus() (*db.MigrationStatus, error) {
	return db.NewMigrationManager(s.db).GetMigrationStatus()
}

// Migrate applies pending schema migrations.
func (s *Store) Migrate() error {
	return db.NewMigrationManager(s.db).ApplyPendingMigrations()
}

func (s *Store) Optimize() error {
	_, err := s.db.Exec("PRAGMA optimize")
	return err
}

func (s *Store) Vacuum() error {
	_, err := s.db.Exec("VACUUM")
	return err
}

func (s *Store) Analyze() error {
	_, err := s.db.Exec("ANALYZE")
	return err
}

// IntegrityCheck returns the problems reported by PRAGMA integrity_check,
// or nil for a healthy database.
func (s *Store) IntegrityCheck() ([]string, error) {
	rows, err := s.db.Query("PRAGMA integrity_check")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var problems []string
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return nil, err
		}
		if msg != "ok" {
			problems = append(problems, msg)
		}
	}
	return problems, rows.Err()
}

func (s *Store) WALCheckpoint() error {
	_, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return err
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY
// constraint failure.
func isUniqueViolation(err error) bool {
	return errors.Is(err, sqlite3.CONSTRAINT_UNIQUE) || errors.Is(err, sqlite3.CONSTRAINT_PRIMARYKEY)
}

// timeFormat is fixed width so stored values sort as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

// parseTime accepts the stored format and SQLite's CURRENT_TIMESTAMP format.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}
