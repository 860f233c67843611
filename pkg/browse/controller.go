// Package browse drives incremental loading of the title grid.
//
// A Controller accumulates pages from a Loader as the reader scrolls. Any
// change of query, kind filter or genre starts a new generation: the list
// is cleared, paging restarts at 1 and results still in flight for an older
// generation are dropped when they arrive.
package browse

import (
	"context"
	"strings"
	"sync"

	"github.com/rubiojr/cinegrid/pkg/catalog"
	"github.com/rubiojr/cinegrid/pkg/layout"
	"github.com/rubiojr/cinegrid/pkg/log"
)

// Loader fetches listing pages and search results.
type Loader interface {
	Browse(ctx context.Context, filter catalog.MediaFilter, genre, page int) ([]catalog.Item, error)
	Search(ctx context.Context, query string) ([]catalog.Item, error)
}

// State is a snapshot of a Controller.
type State struct {
	Query      string
	Filter     catalog.MediaFilter
	Genre      int
	Items      []catalog.Item
	Page       int
	HasMore    bool
	Loading    bool
	Generation uint64
}

// Layout returns the layout context of the accumulated list. The list
// always starts at page 1, so only search and filters matter.
func (s State) Layout() layout.Context {
	return layout.Context{
		FirstPage: true,
		Search:    s.Query != "",
		Filtered:  s.Filter != catalog.FilterAll || s.Genre != 0,
	}
}

// Result describes the outcome of one Load call.
type Result struct {
	// Page is the page number that was requested.
	Page int
	// Items holds the titles returned for that page.
	Items []catalog.Item
	// Stale is true when the controller moved to a new generation while the
	// request was in flight. Stale results are not applied.
	Stale bool
	// Err is the fetch error, if any. Errors are applied as an empty page.
	Err error
}

// Controller is safe for concurrent use.
type Controller struct {
	loader Loader
	logger *log.Logger

	mu      sync.Mutex
	query   string
	filter  catalog.MediaFilter
	genre   int
	items   []catalog.Item
	page    int
	hasMore bool
	loading bool
	gen     uint64
}

// New returns a controller for the unfiltered listing, positioned at page 1.
func New(loader Loader) *Controller {
	return &Controller{
		loader:  loader,
		logger:  log.ForService("browse"),
		filter:  catalog.FilterAll,
		page:    1,
		hasMore: true,
	}
}

// reset must be called with mu held.
func (c *Controller) reset() {
	c.items = nil
	c.page = 1
	c.hasMore = true
	c.loading = false
	c.gen++
}

// SetQuery switches to search mode, or back to browsing for an empty query.
// Searching resets the kind filter and genre. Reports whether anything
// changed.
func (c *Controller) SetQuery(query string) bool {
	query = strings.TrimSpace(query)
	c.mu.Lock()
	defer c.mu.Unlock()
	if query == c.query {
		return false
	}
	c.query = query
	if query != "" {
		c.filter = catalog.FilterAll
		c.genre = 0
	}
	c.reset()
	return true
}

// SetFilter changes the kind filter. Reports whether anything changed.
func (c *Controller) SetFilter(filter catalog.MediaFilter) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if filter == c.filter {
		return false
	}
	c.filter = filter
	c.reset()
	return true
}

// SetGenre changes the genre filter, 0 for none. Reports whether anything
// changed.
func (c *Controller) SetGenre(genre int) bool {
	if genre < 0 {
		genre = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if genre == c.genre {
		return false
	}
	c.genre = genre
	c.reset()
	return true
}

// Trigger is the end-of-list signal. It advances to the next page when no
// load is running or pending and more pages may exist, and reports whether
// it did. An advance marks the controller as loading until the next Load
// applies that page.
func (c *Controller) Trigger() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading || !c.hasMore {
		return false
	}
	c.page++
	c.loading = true
	return true
}

// Load fetches the current page and applies it unless the generation
// changed in the meantime.
func (c *Controller) Load(ctx context.Context) Result {
	c.mu.Lock()
	gen, page := c.gen, c.page
	query, filter, genre := c.query, c.filter, c.genre
	c.loading = true
	c.mu.Unlock()

	var (
		items []catalog.Item
		err   error
	)
	switch {
	case query != "" && page > 1:
		// Search results are a single page.
	case query != "":
		items, err = c.loader.Search(ctx, query)
	default:
		items, err = c.loader.Browse(ctx, filter, genre, page)
	}
	if err != nil {
		c.logger.Warnf("failed to load page %d: %v", page, err)
		items = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.logger.Debugf("dropping stale page %d (generation %d, now %d)", page, gen, c.gen)
		return Result{Page: page, Items: items, Stale: true, Err: err}
	}

	c.loading = false
	switch {
	case query != "":
		c.hasMore = false
	case len(items) == 0:
		c.hasMore = false
	}
	if page == 1 {
		c.items = append([]catalog.Item(nil), items...)
	} else {
		c.items = append(c.items, items...)
	}
	return Result{Page: page, Items: items, Err: err}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Query:      c.query,
		Filter:     c.filter,
		Genre:      c.genre,
		Items:      append([]catalog.Item(nil), c.items...),
		Page:       c.page,
		HasMore:    c.hasMore,
		Loading:    c.loading,
		Generation: c.gen,
	}
}

// Layout returns the layout context for the current state.
func (c *Controller) Layout() layout.Context {
	return c.Snapshot().Layout()
}
