package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rubiojr/cinegrid/pkg/storage"
	"github.com/urfave/cli/v3"
)

// OptimizeCommand creates the optimize command
func OptimizeCommand() *cli.Command {
	return &cli.Command{
		Name:  "optimize",
		Usage: "Database optimization and maintenance commands",
		Commands: []*cli.Command{
			{
				Name:  "check",
				Usage: "Run an integrity check on the database",
				Action: func(ctx context.Context, c *cli.Command) error {
					return maintain(ctx, os.Stdout, c.String("config"), checkStep)
				},
			},
			{
				Name:  "analyze",
				Usage: "Run ANALYZE to update query planner statistics",
				Action: func(ctx context.Context, c *cli.Command) error {
					return maintain(ctx, os.Stdout, c.String("config"), analyzeStep)
				},
			},
			{
				Name:  "vacuum",
				Usage: "Run VACUUM to defragment the database",
				Action: func(ctx context.Context, c *cli.Command) error {
					fmt.Println("This may take a while for large databases...")
					return maintain(ctx, os.Stdout, c.String("config"), vacuumStep)
				},
			},
			{
				Name:  "checkpoint",
				Usage: "Run WAL checkpoint to flush changes",
				Action: func(ctx context.Context, c *cli.Command) error {
					return maintain(ctx, os.Stdout, c.String("config"), checkpointStep)
				},
			},
			{
				Name:  "prune-sessions",
				Usage: "Delete expired sign-in sessions",
				Action: func(ctx context.Context, c *cli.Command) error {
					return maintain(ctx, os.Stdout, c.String("config"), pruneStep)
				},
			},
			{
				Name:  "all",
				Usage: "Run all maintenance operations (prune, optimize, analyze, checkpoint)",
				Action: func(ctx context.Context, c *cli.Command) error {
					return maintain(ctx, os.Stdout, c.String("config"), pruneStep, optimizeStep, analyzeStep, checkpointStep)
				},
			},
		},
	}
}

// maintenanceStep is one named operation on the local database.
type maintenanceStep struct {
	name string
	run  func(ctx context.Context, a *app) (string, error)
}

var (
	checkStep = maintenanceStep{"integrity check", func(ctx context.Context, a *app) (string, error) {
		problems, err := a.store.IntegrityCheck()
		if err != nil {
			return "", err
		}
		if len(problems) > 0 {
			return "", fmt.Errorf("database is corrupt:\n  %s", strings.Join(problems, "\n  "))
		}
		return "database is healthy", nil
	}}
	optimizeStep = maintenanceStep{"PRAGMA optimize", func(ctx context.Context, a *app) (string, error) {
		return "", a.store.Optimize()
	}}
	analyzeStep = maintenanceStep{"ANALYZE", func(ctx context.Context, a *app) (string, error) {
		return "", a.store.Analyze()
	}}
	vacuumStep = maintenanceStep{"VACUUM", func(ctx context.Context, a *app) (string, error) {
		before := storeSize(a.store)
		if err := a.store.Vacuum(); err != nil {
			return "", err
		}
		return fmt.Sprintf("%d KiB -> %d KiB", before/1024, storeSize(a.store)/1024), nil
	}}
	checkpointStep = maintenanceStep{"WAL checkpoint", func(ctx context.Context, a *app) (string, error) {
		return "", a.store.WALCheckpoint()
	}}
	pruneStep = maintenanceStep{"session pruning", func(ctx context.Context, a *app) (string, error) {
		n, err := a.auth.PruneSessions(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d expired sessions removed", n), nil
	}}
)

// maintain opens the database and runs the steps in order, stopping at the
// first failure.
func maintain(ctx context.Context, out io.Writer, configPath string, steps ...maintenanceStep) error {
	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	return runSteps(ctx, out, a, steps...)
}

func runSteps(ctx context.Context, out io.Writer, a *app, steps ...maintenanceStep) error {
	fmt.Fprintln(out, titleStyle.Render("Maintaining "+a.store.Path()))
	for _, step := range steps {
		fmt.Fprintf(out, "Running %s... ", step.name)
		detail, err := step.run(ctx, a)
		if err != nil {
			fmt.Fprintln(out, "✗ FAILED")
			return fmt.Errorf("%s: %w", step.name, err)
		}
		fmt.Fprintln(out, "✓ OK")
		if detail != "" {
			fmt.Fprintln(out, metaStyle.Render("  "+detail))
		}
	}
	fmt.Fprintln(out, summaryStyle.Render(fmt.Sprintf("%d operations completed successfully", len(steps))))
	return nil
}

// storeSize reports the size of the database file, zero when it is missing.
func storeSize(s *storage.Store) int64 {
	fi, err := os.Stat(s.Path())
	if err != nil {
		return 0
	}
	return fi.Size()
}
