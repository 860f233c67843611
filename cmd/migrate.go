package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rubiojr/cinegrid/pkg/config"
	"github.com/rubiojr/cinegrid/pkg/db"
	"github.com/rubiojr/cinegrid/pkg/storage"
	"github.com/urfave/cli/v3"
)

// MigrateCommand creates the migrate command
func MigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Run database migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "status",
				Usage: "Show migration status without applying migrations",
				Value: false,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return RunMigrations(os.Stdout, c.String("config"), c.Bool("status"))
		},
	}
}

// RunMigrations applies pending migrations to the local database, or only
// reports them when statusOnly is set.
func RunMigrations(out io.Writer, configPath string, statusOnly bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	dbPath := filepath.Join(cfg.StorageDir, storage.DatabaseFile)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(out, "Database does not exist, will be created on first use: %s\n", dbPath)
		return nil
	}

	store, err := storage.OpenWithoutMigrations(dbPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dbPath, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(out, "Warning: failed to close database: %v\n", err)
		}
	}()

	status, err := store.MigrationStatus()
	if err != nil {
		return fmt.Errorf("reading migration status: %w", err)
	}
	if statusOnly {
		showMigrationStatus(out, status)
		return nil
	}

	if len(status.Pending) == 0 {
		fmt.Fprintln(out, "Database is up to date")
		return nil
	}
	if err := store.Migrate(); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	for _, m := range status.Pending {
		fmt.Fprintf(out, "  ✓ %03d: %s\n", m.Version, m.Name)
	}
	fmt.Fprintf(out, "Applied %d migrations\n", len(status.Pending))
	return nil
}

func showMigrationStatus(out io.Writer, status *db.MigrationStatus) {
	fmt.Fprintf(out, "Applied migrations: %d\n", len(status.Applied))
	for _, m := range status.Applied {
		appliedTime := "unknown"
		if m.AppliedAt != nil {
			appliedTime = m.AppliedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(out, "  ✓ %03d: %s (applied: %s)\n", m.Version, m.Name, appliedTime)
	}

	fmt.Fprintf(out, "Pending migrations: %d\n", len(status.Pending))
	for _, m := range status.Pending {
		fmt.Fprintf(out, "  • %03d: %s\n", m.Version, m.Name)
	}
	if len(status.Pending) == 0 {
		fmt.Fprintln(out, "  (none - database is up to date)")
	}
}
