package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rubiojr/cinegrid/pkg/storage"
)

func writeConfig(t *testing.T, storageDir string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	content := fmt.Sprintf("storage_dir = %q\n", storageDir)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestRunMigrations(t *testing.T) {
	storageDir := t.TempDir()
	configPath := writeConfig(t, storageDir)

	var out bytes.Buffer
	if err := RunMigrations(&out, configPath, true); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}
	if !strings.Contains(out.String(), "will be created on first use") {
		t.Fatalf("expected a missing database notice, got:\n%s", out.String())
	}

	// An empty database file with no schema yet.
	s, err := storage.OpenWithoutMigrations(filepath.Join(storageDir, storage.DatabaseFile))
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	out.Reset()
	if err := RunMigrations(&out, configPath, true); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}
	if !strings.Contains(out.String(), "Applied migrations: 0") || !strings.Contains(out.String(), "• 001: initial") {
		t.Fatalf("expected a pending initial migration, got:\n%s", out.String())
	}

	out.Reset()
	if err := RunMigrations(&out, configPath, false); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}
	if !strings.Contains(out.String(), "Applied 1 migrations") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}

	out.Reset()
	if err := RunMigrations(&out, configPath, false); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}
	if !strings.Contains(out.String(), "up to date") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestMaintenanceSteps(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	sess, err := a.auth.SignUp(ctx, "trinity@matrix.io", "whiterabbit", "Trinity")
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	steps := []maintenanceStep{checkStep, pruneStep, optimizeStep, analyzeStep, checkpointStep, vacuumStep}
	if err := runSteps(ctx, &out, a, steps...); err != nil {
		t.Fatalf("runSteps failed: %v\n%s", err, out.String())
	}
	got := out.String()
	for _, want := range []string{"database is healthy", "0 expired sessions removed", "KiB", "6 operations completed"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in:\n%s", want, got)
		}
	}

	if u, err := a.auth.User(ctx, sess.Token); err != nil || u == nil {
		t.Fatalf("live session should survive pruning: %v", err)
	}
}

func TestInitConfigRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cinegrid", "config.toml")
	if err := initConfig(path, false); err != nil {
		t.Fatalf("initConfig failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "access_token") {
		t.Fatalf("template lacks the tmdb section:\n%s", data)
	}

	if err := initConfig(path, false); err == nil {
		t.Fatal("expected an error for an existing file")
	}
	if err := initConfig(path, true); err != nil {
		t.Fatalf("--force should overwrite: %v", err)
	}
}
