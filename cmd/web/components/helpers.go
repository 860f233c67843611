package components

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/rubiojr/cinegrid/pkg/catalog"
	"github.com/rubiojr/cinegrid/pkg/search"
)

// Heading is the title above the grid: the search echo, the active filter
// or the trending feed.
func Heading(params search.Params, genres []catalog.Genre) string {
	if params.IsSearch() {
		return fmt.Sprintf("Results for %q", params.Query)
	}
	name := ""
	if params.Genre != 0 {
		name = GenreName(genres, params.Genre)
	}
	switch {
	case params.Filter != catalog.FilterAll && name != "":
		return name + " " + params.Filter.Label()
	case params.Filter != catalog.FilterAll:
		return "Popular " + params.Filter.Label()
	case name != "":
		return name
	}
	return "Trending Now"
}

// GenreName returns the name of a genre id, or "" when unknown.
func GenreName(genres []catalog.Genre, id int) string {
	for _, g := range genres {
		if g.ID == id {
			return g.Name
		}
	}
	return ""
}

// GenreNames maps ids to names, skipping unknown ids.
func GenreNames(genres []catalog.Genre, ids []int) []string {
	var names []string
	for _, id := range ids {
		if n := GenreName(genres, id); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// CountLabel renders the "N TITLES FOUND" counter.
func CountLabel(n int) string {
	if n == 1 {
		return "1 TITLE FOUND"
	}
	return strconv.Itoa(n) + " TITLES FOUND"
}

// ListingURL builds a link to path for the listing state. Zero values are
// left out.
func ListingURL(path string, params search.Params) string {
	v := url.Values{}
	if params.Query != "" {
		v.Set("q", params.Query)
	}
	if params.Filter != "" && params.Filter != catalog.FilterAll {
		v.Set("type", string(params.Filter))
	}
	if params.Genre != 0 {
		v.Set("genre", strconv.Itoa(params.Genre))
	}
	if params.Page > 1 {
		v.Set("page", strconv.Itoa(params.Page))
	}
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

// NextURL returns the grid fragment URL of the page after params, or ""
// when the listing cannot grow: search results are a single page and an
// empty page ends the listing.
func NextURL(params search.Params, fetched int) string {
	if params.IsSearch() || fetched == 0 {
		return ""
	}
	next := params
	next.Page = params.Page + 1
	return ListingURL("/grid", next)
}
