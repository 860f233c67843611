package catalog

import (
	"fmt"
	"strings"
)

// MediaFilter restricts a listing to one kind or lets both through.
type MediaFilter string

const (
	FilterAll   MediaFilter = "all"
	FilterMovie MediaFilter = "movie"
	FilterTV    MediaFilter = "tv"
)

// ParseMediaFilter parses a filter, treating the empty string as "all".
func ParseMediaFilter(s string) (MediaFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "movie", "movies":
		return FilterMovie, nil
	case "tv", "series":
		return FilterTV, nil
	}
	return "", fmt.Errorf("unknown media filter %q", s)
}

// Kind returns the single kind selected by the filter, if any.
func (f MediaFilter) Kind() (Kind, bool) {
	switch f {
	case FilterMovie:
		return KindMovie, true
	case FilterTV:
		return KindTV, true
	}
	return "", false
}

// Label is the navigation label of the filter.
func (f MediaFilter) Label() string {
	switch f {
	case FilterMovie:
		return "Movies"
	case FilterTV:
		return "Series"
	}
	return "All"
}

// MediaFilters lists the filters in navigation order.
func MediaFilters() []MediaFilter {
	return []MediaFilter{FilterAll, FilterMovie, FilterTV}
}
