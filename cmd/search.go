package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rubiojr/cinegrid/cmd/web/components"
	"github.com/rubiojr/cinegrid/pkg/catalog"
	"github.com/rubiojr/cinegrid/pkg/layout"
	"github.com/urfave/cli/v3"
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search movies and series",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "query",
				Usage: "Search query (or pass it as arguments)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results (0 for all)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print results as JSON",
			},
			&cli.BoolFlag{
				Name:  "no-pager",
				Usage: "Disable pager output",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			query := c.String("query")
			if query == "" {
				query = strings.Join(c.Args().Slice(), " ")
			}
			return searchTitles(ctx, c.String("config"), query, c.Int("limit"), c.Bool("json"), c.Bool("no-pager"))
		},
	}
}

func searchTitles(ctx context.Context, configPath, query string, limit int, asJSON, noPager bool) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return fmt.Errorf("a search query is required")
	}

	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.connect(); err != nil {
		return err
	}

	items := a.search.Search(ctx, query)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if items == nil {
			items = []catalog.Item{}
		}
		return enc.Encode(items)
	}

	heading := fmt.Sprintf("Results for %q · %s", query, components.CountLabel(len(items)))
	out := formatItems(heading, items, layout.Context{FirstPage: true, Search: true}, nil)
	return printOutput(out, noPager)
}
