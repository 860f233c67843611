package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rubiojr/cinegrid/pkg/catalog"
	"github.com/rubiojr/cinegrid/pkg/layout"
	"github.com/rubiojr/cinegrid/pkg/tmdb"
	"github.com/urfave/cli/v3"
)

// TrailerCommand creates the trailer command
func TrailerCommand() *cli.Command {
	return &cli.Command{
		Name:      "trailer",
		Usage:     "Print the trailer URL and streaming provider of a title",
		ArgsUsage: "<movie|tv> <id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 2 {
				return fmt.Errorf("usage: trailer <movie|tv> <id>")
			}
			kind, err := catalog.ParseKind(c.Args().Get(0))
			if err != nil {
				return err
			}
			id, err := strconv.Atoi(c.Args().Get(1))
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid id %q", c.Args().Get(1))
			}
			return showTrailer(ctx, c.String("config"), kind, id)
		},
	}
}

func showTrailer(ctx context.Context, configPath string, kind catalog.Kind, id int) error {
	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.connect(); err != nil {
		return err
	}

	item, err := a.client.Details(ctx, kind, id)
	if err != nil {
		if tmdb.IsNotFound(err) {
			return fmt.Errorf("%s %d not found", kind, id)
		}
		return fmt.Errorf("loading %s %d: %w", kind, id, err)
	}
	item.Platform = a.enricher.Provider(ctx, kind, id)
	fmt.Println(formatItem(item, layout.Featured, false))

	key, err := a.client.Trailer(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("looking up trailer: %w", err)
	}
	if key == "" {
		fmt.Println(noDataStyle.Render("No trailer available."))
		return nil
	}
	fmt.Println(urlStyle.Render(tmdb.YouTubeURL(key)))
	return nil
}

// GenresCommand creates the genres command
func GenresCommand() *cli.Command {
	return &cli.Command{
		Name:  "genres",
		Usage: "List movie and series genres",
		Action: func(ctx context.Context, c *cli.Command) error {
			return listGenres(ctx, c.String("config"))
		},
	}
}

func listGenres(ctx context.Context, configPath string) error {
	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.connect(); err != nil {
		return err
	}

	genres, err := a.client.Genres(ctx)
	if err != nil {
		return fmt.Errorf("loading genres: %w", err)
	}
	fmt.Println(titleStyle.Render(fmt.Sprintf("%d genres", len(genres))))
	for _, g := range genres {
		fmt.Printf("%6d  %s\n", g.ID, g.Name)
	}
	return nil
}
