package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/rubiojr/cinegrid/cmd/web/components"
	"github.com/rubiojr/cinegrid/pkg/catalog"
	"github.com/rubiojr/cinegrid/pkg/layout"
	"github.com/urfave/cli/v3"
)

func userFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "user",
		Usage:    "Account email",
		Required: true,
	}
}

// FavoritesCommand creates the favorites command with its subcommands
func FavoritesCommand() *cli.Command {
	return &cli.Command{
		Name:  "favorites",
		Usage: "List and edit the saved titles of an account",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved titles, newest first",
				Flags: []cli.Flag{
					userFlag(),
					&cli.BoolFlag{
						Name:  "no-pager",
						Usage: "Disable pager output",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return listFavorites(ctx, c.String("config"), c.String("user"), c.Bool("no-pager"))
				},
			},
			{
				Name:      "add",
				Usage:     "Save a title",
				ArgsUsage: "<movie-ID|tv-ID>",
				Flags:     []cli.Flag{userFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					return addFavorite(ctx, c.String("config"), c.String("user"), c.Args().First())
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove a saved title",
				ArgsUsage: "<movie-ID|tv-ID>",
				Flags:     []cli.Flag{userFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					return removeFavorite(ctx, c.String("config"), c.String("user"), c.Args().First())
				},
			},
		},
	}
}

func listFavorites(ctx context.Context, configPath, email string, noPager bool) error {
	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := lookupUser(ctx, a, email)
	if err != nil {
		return err
	}
	saved, err := a.favorites.List(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("listing favorites: %w", err)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Favorites of %s · %s", u.Email, components.CountLabel(len(saved)))))
	b.WriteString("\n")
	if len(saved) == 0 {
		b.WriteString(noDataStyle.Render("No saved titles yet."))
		b.WriteString("\n")
	}
	for _, f := range saved {
		b.WriteString(formatItem(f.Item, layout.Standard, true))
		b.WriteString("\n")
		b.WriteString(metaStyle.Render("  saved " + formatTime(f.CreatedAt)))
		b.WriteString("\n")
	}
	return printOutput(b.String(), noPager)
}

// addFavorite saves a title by key. The item is fetched from upstream so
// the stored copy has its title and artwork.
func addFavorite(ctx context.Context, configPath, email, rawKey string) error {
	key, err := catalog.ParseKey(rawKey)
	if err != nil {
		return err
	}

	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := lookupUser(ctx, a, email)
	if err != nil {
		return err
	}
	if err := a.connect(); err != nil {
		return err
	}

	item, err := a.client.Details(ctx, key.Kind, key.ID)
	if err != nil {
		return fmt.Errorf("loading %s: %w", key, err)
	}
	if err := a.favorites.Add(ctx, u.ID, item); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	fmt.Printf("♥ saved %s (%s)\n", item.Title, key)
	return nil
}

func removeFavorite(ctx context.Context, configPath, email, rawKey string) error {
	key, err := catalog.ParseKey(rawKey)
	if err != nil {
		return err
	}

	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := lookupUser(ctx, a, email)
	if err != nil {
		return err
	}
	if err := a.favorites.Remove(ctx, u.ID, key); err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	fmt.Printf("removed %s\n", key)
	return nil
}
