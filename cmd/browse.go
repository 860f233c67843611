package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/rubiojr/cinegrid/cmd/web/components"
	"github.com/rubiojr/cinegrid/pkg/browse"
	"github.com/rubiojr/cinegrid/pkg/catalog"
	"github.com/rubiojr/cinegrid/pkg/config"
	"github.com/rubiojr/cinegrid/pkg/layout"
	"github.com/rubiojr/cinegrid/pkg/search"
	"github.com/rubiojr/cinegrid/pkg/shared"
	"github.com/rubiojr/cinegrid/pkg/tmdb"
	"github.com/urfave/cli/v3"
)

// BrowseCommand creates the interactive browse command
func BrowseCommand() *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "Browse the catalog interactively, one page at a time",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "user",
				Usage: "Email of the account whose favorites are shown and edited",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runBrowse(ctx, c.String("config"), c.String("user"))
		},
	}
}

var browseCommands = []string{"more", "search", "type", "genre", "genres", "show", "fav", "reset", "help", "quit"}

const browseHelp = `Commands:
  more (or empty line)    load the next page
  search <query>          search movies and series
  type all|movie|tv       filter by kind
  genre <id|name|none>    filter by genre
  genres                  list genres
  show <n>                details, provider and trailer of title n
  fav <n>                 toggle title n in your favorites (needs --user)
  reset                   back to trending
  quit                    leave
`

func runBrowse(ctx context.Context, configPath, email string) error {
	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.connect(); err != nil {
		return err
	}

	b := newBrowser(a, os.Stdout)
	if email != "" {
		u, err := lookupUser(ctx, a, email)
		if err != nil {
			return err
		}
		b.userID = u.ID
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(func(l string) []string {
		var out []string
		for _, c := range browseCommands {
			if strings.HasPrefix(c, strings.ToLower(l)) {
				out = append(out, c)
			}
		}
		return out
	})

	historyPath := ""
	if dir, err := config.GetConfigDir(); err == nil {
		historyPath = filepath.Join(dir, "browse_history")
		if f, err := os.Open(historyPath); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}
	defer func() {
		if historyPath == "" {
			return
		}
		if f, err := os.Create(historyPath); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprint(b.out, browseHelp)
	b.load(ctx)

	for {
		input, err := line.Prompt("cinegrid> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if quit := b.exec(ctx, input); quit {
			return nil
		}
	}
}

// browser executes REPL commands against a pagination controller.
type browser struct {
	app    *app
	ctl    *browse.Controller
	out    io.Writer
	userID string
	genres []catalog.Genre
}

func newBrowser(a *app, out io.Writer) *browser {
	return &browser{app: a, ctl: browse.New(a.source), out: out}
}

// exec runs one command line and reports whether the session should end.
func (b *browser) exec(ctx context.Context, input string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(input), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "", "more", "n":
		if !b.ctl.Trigger() {
			fmt.Fprintln(b.out, noDataStyle.Render("No more titles."))
			return false
		}
		b.load(ctx)
	case "search", "s":
		if arg == "" {
			fmt.Fprintln(b.out, "usage: search <query>")
			return false
		}
		b.ctl.SetQuery(arg)
		b.load(ctx)
	case "type", "t":
		f, err := catalog.ParseMediaFilter(arg)
		if err != nil {
			fmt.Fprintln(b.out, err)
			return false
		}
		changed := b.ctl.SetQuery("")
		b.refresh(ctx, b.ctl.SetFilter(f) || changed)
	case "genre", "g":
		id, err := b.genreID(ctx, arg)
		if err != nil {
			fmt.Fprintln(b.out, err)
			return false
		}
		changed := b.ctl.SetQuery("")
		b.refresh(ctx, b.ctl.SetGenre(id) || changed)
	case "genres":
		for _, g := range b.genreList(ctx) {
			fmt.Fprintf(b.out, "%6d  %s\n", g.ID, g.Name)
		}
	case "show":
		if it, ok := b.pick(arg); ok {
			b.show(ctx, it)
		}
	case "fav", "f":
		if it, ok := b.pick(arg); ok {
			b.toggle(ctx, it)
		}
	case "reset":
		changed := b.ctl.SetQuery("")
		changed = b.ctl.SetFilter(catalog.FilterAll) || changed
		b.refresh(ctx, b.ctl.SetGenre(0) || changed)
	case "help", "h", "?":
		fmt.Fprint(b.out, browseHelp)
	case "quit", "q", "exit":
		return true
	default:
		fmt.Fprintf(b.out, "unknown command %q, try help\n", cmd)
	}
	return false
}

// refresh reloads from page 1 when the listing state changed.
func (b *browser) refresh(ctx context.Context, changed bool) {
	if !changed {
		fmt.Fprintln(b.out, metaStyle.Render("Already showing that listing."))
		return
	}
	b.load(ctx)
}

// load fetches the current page and prints the titles it added.
func (b *browser) load(ctx context.Context) {
	before := len(b.ctl.Snapshot().Items)
	res := b.ctl.Load(ctx)
	if res.Stale {
		return
	}
	st := b.ctl.Snapshot()
	if res.Page == 1 {
		before = 0
		params := search.Params{Query: st.Query, Filter: st.Filter, Genre: st.Genre, Page: 1}
		heading := components.Heading(params, b.genreList(ctx))
		if params.IsSearch() {
			heading += " · " + components.CountLabel(len(st.Items))
		}
		fmt.Fprintln(b.out, titleStyle.Render(heading))
	}
	if res.Err != nil {
		fmt.Fprintln(b.out, noDataStyle.Render(shared.UpstreamMessage(res.Err)))
		return
	}
	if len(res.Items) == 0 {
		fmt.Fprintln(b.out, noDataStyle.Render("No titles found."))
	}

	favs := b.favoriteKeys(ctx)
	ctxLayout := st.Layout()
	for i, it := range res.Items {
		idx := before + i
		fmt.Fprintf(b.out, "%3d\n%s\n", idx+1, formatItem(it, layout.RoleFor(idx, ctxLayout), favs[it.Key()]))
	}
	if !st.HasMore {
		fmt.Fprintln(b.out, metaStyle.Render(fmt.Sprintf("%d titles, end of list", len(st.Items))))
	}
}

func (b *browser) pick(arg string) (catalog.Item, bool) {
	n, err := strconv.Atoi(arg)
	items := b.ctl.Snapshot().Items
	if err != nil || n < 1 || n > len(items) {
		fmt.Fprintf(b.out, "pick a title between 1 and %d\n", len(items))
		return catalog.Item{}, false
	}
	return items[n-1], true
}

func (b *browser) show(ctx context.Context, it catalog.Item) {
	it.Platform = b.app.enricher.Provider(ctx, it.Kind, it.ID)
	fmt.Fprintln(b.out, formatItem(it, layout.Featured, b.favoriteKeys(ctx)[it.Key()]))
	if names := components.GenreNames(b.genreList(ctx), it.GenreIDs); len(names) > 0 {
		fmt.Fprintln(b.out, metaStyle.Render(strings.Join(names, " · ")))
	}
	key, err := b.app.client.Trailer(ctx, it.Kind, it.ID)
	switch {
	case err != nil:
		fmt.Fprintln(b.out, noDataStyle.Render(shared.UpstreamMessage(err)))
	case key == "":
		fmt.Fprintln(b.out, noDataStyle.Render("No trailer available."))
	default:
		fmt.Fprintln(b.out, urlStyle.Render(tmdb.YouTubeURL(key)))
	}
}

func (b *browser) toggle(ctx context.Context, it catalog.Item) {
	if b.userID == "" {
		fmt.Fprintln(b.out, "start browse with --user to manage favorites")
		return
	}
	on, err := b.app.favorites.Toggle(ctx, b.userID, it)
	if err != nil {
		fmt.Fprintf(b.out, "could not update favorites: %v\n", err)
		return
	}
	if on {
		fmt.Fprintf(b.out, "♥ saved %s\n", it.Title)
	} else {
		fmt.Fprintf(b.out, "removed %s\n", it.Title)
	}
}

func (b *browser) favoriteKeys(ctx context.Context) map[catalog.Key]bool {
	if b.userID == "" {
		return nil
	}
	keys, err := b.app.favorites.Keys(ctx, b.userID)
	if err != nil {
		return nil
	}
	return keys
}

func (b *browser) genreList(ctx context.Context) []catalog.Genre {
	if b.genres == nil {
		genres, err := b.app.client.Genres(ctx)
		if err != nil {
			return nil
		}
		b.genres = genres
	}
	return b.genres
}

// genreID resolves a genre id or a case-insensitive name. "none" and an
// empty argument clear the genre filter.
func (b *browser) genreID(ctx context.Context, arg string) (int, error) {
	if arg == "" || strings.EqualFold(arg, "none") {
		return 0, nil
	}
	if id, err := strconv.Atoi(arg); err == nil && id > 0 {
		return id, nil
	}
	for _, g := range b.genreList(ctx) {
		if strings.EqualFold(g.Name, arg) {
			return g.ID, nil
		}
	}
	return 0, fmt.Errorf("unknown genre %q, see genres", arg)
}
