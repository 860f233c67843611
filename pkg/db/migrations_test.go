package db

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestEmbeddedMigrations(t *testing.T) {
	migrations, err := GetEmbeddedMigrations()
	if err != nil {
		t.Fatalf("Failed to read embedded migrations: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected at least one embedded migration")
	}
	if migrations[0].Version != 1 || migrations[0].Name != "initial" {
		t.Fatalf("unexpected first migration %d %q", migrations[0].Version, migrations[0].Name)
	}
	for i := 1; i < len(migrations); i++ {
		if migrations[i].Version <= migrations[i-1].Version {
			t.Fatalf("migrations not sorted: %d after %d", migrations[i].Version, migrations[i-1].Version)
		}
	}
}

func TestInitializeDatabaseIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	if err := InitializeDatabase(db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := InitializeDatabase(db); err != nil {
		t.Fatalf("second run: %v", err)
	}

	status, err := NewMigrationManager(db).GetMigrationStatus()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(status.Pending) != 0 {
		t.Fatalf("expected no pending migrations, got %d", len(status.Pending))
	}
	if len(status.Applied) != len(status.Available) {
		t.Fatalf("applied %d of %d", len(status.Applied), len(status.Available))
	}
	if status.Applied[0].AppliedAt == nil {
		t.Fatal("applied migration missing timestamp")
	}

	for _, table := range []string{"users", "sessions", "favorites"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}

func TestMigrationsFromPath(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"002_second.sql": "CREATE TABLE two (id INTEGER);",
		"001_first.sql":  "CREATE TABLE one (id INTEGER);",
		"notes.txt":      "ignored",
		"bad.sql":        "ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	db := openTestDB(t)
	m := NewMigrationManagerFromPath(db, dir)

	available, err := m.GetAvailableMigrations()
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if len(available) != 2 || available[0].Name != "first" || available[1].Name != "second" {
		t.Fatalf("unexpected migrations %+v", available)
	}

	if err := m.ApplyPendingMigrations(); err != nil {
		t.Fatalf("apply: %v", err)
	}
	pending, err := m.GetPendingMigrations()
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected nothing pending, got %d", len(pending))
	}
}

func TestFailedMigrationRollsBack(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "001_broken.sql"), []byte("CREATE TABLE ok (id INTEGER); NOT SQL;"), 0o644); err != nil {
		t.Fatal(err)
	}

	db := openTestDB(t)
	m := NewMigrationManagerFromPath(db, dir)
	if err := m.ApplyPendingMigrations(); err == nil {
		t.Fatal("expected error")
	}

	applied, err := m.GetAppliedMigrations()
	if err != nil {
		t.Fatalf("applied: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("broken migration recorded as applied")
	}
}
