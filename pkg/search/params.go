package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rubiojr/cinegrid/pkg/catalog"
	"github.com/rubiojr/cinegrid/pkg/layout"
)

// Params is the listing request shared by the API and the web UI.
type Params struct {
	// Query is the free text search. Non-empty switches to search mode.
	Query string

	// Filter restricts the listing to one media kind.
	Filter catalog.MediaFilter

	// Genre is the upstream genre id, 0 for none.
	Genre int

	// Page is the 1-based page number. Search mode only has page 1.
	Page int
}

// IsSearch reports whether the request is a text search.
func (p Params) IsSearch() bool {
	return p.Query != ""
}

// Filtered reports whether a kind or genre filter is active.
func (p Params) Filtered() bool {
	return p.Filter != catalog.FilterAll || p.Genre != 0
}

// Layout returns the grid layout context for the request.
func (p Params) Layout() layout.Context {
	return layout.Context{
		FirstPage: p.Page <= 1,
		Search:    p.IsSearch(),
		Filtered:  p.Filtered(),
	}
}

// ParseParams reads q, type, genre and page from an HTTP query string.
// Malformed page numbers fall back to 1; malformed filters are errors.
func ParseParams(values map[string][]string) (Params, error) {
	params := Params{
		Filter: catalog.FilterAll,
		Page:   1,
	}

	if q := values["q"]; len(q) > 0 {
		params.Query = strings.TrimSpace(q[0])
	}

	if t := values["type"]; len(t) > 0 {
		f, err := catalog.ParseMediaFilter(t[0])
		if err != nil {
			return params, err
		}
		params.Filter = f
	}

	if g := values["genre"]; len(g) > 0 && g[0] != "" {
		id, err := strconv.Atoi(g[0])
		if err != nil || id < 0 {
			return params, fmt.Errorf("invalid genre %q", g[0])
		}
		params.Genre = id
	}

	if p := values["page"]; len(p) > 0 && p[0] != "" {
		if parsed, err := strconv.Atoi(p[0]); err == nil && parsed > 0 {
			params.Page = parsed
		}
	}

	// A search resets to all kinds, as the navigation does.
	if params.IsSearch() {
		params.Filter = catalog.FilterAll
		params.Genre = 0
		params.Page = 1
	}

	return params, nil
}
