package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/rubiojr/cinegrid/pkg/catalog"
	"golang.org/x/sync/errgroup"
)

// Trending returns the weekly trending movies and shows.
func (c *Client) Trending(ctx context.Context, page int) ([]catalog.Item, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(max(page, 1)))

	var p resultPage
	if err := c.get(ctx, "/trending/all/week", params, &p); err != nil {
		return nil, err
	}
	return normalizeAll(p.Results, catalog.KindMovie), nil
}

// Discover lists popular titles of one kind, optionally restricted to a
// genre (0 for none).
func (c *Client) Discover(ctx context.Context, kind catalog.Kind, genre, page int) ([]catalog.Item, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("discover: invalid kind %q", kind)
	}

	params := url.Values{}
	params.Set("include_adult", "false")
	params.Set("page", strconv.Itoa(max(page, 1)))
	params.Set("sort_by", "popularity.desc")
	if kind == catalog.KindMovie {
		params.Set("include_video", "false")
	} else {
		params.Set("include_null_first_air_dates", "false")
	}
	if genre > 0 {
		params.Set("with_genres", strconv.Itoa(genre))
	}

	var p resultPage
	if err := c.get(ctx, "/discover/"+string(kind), params, &p); err != nil {
		return nil, err
	}
	return normalizeAll(p.Results, kind), nil
}

// Browse returns one listing page for the filter and genre. The unfiltered
// listing is the trending feed; "all" with a genre concatenates the movie
// and show discover pages, fetched concurrently.
func (c *Client) Browse(ctx context.Context, filter catalog.MediaFilter, genre, page int) ([]catalog.Item, error) {
	if kind, ok := filter.Kind(); ok {
		return c.Discover(ctx, kind, genre, page)
	}
	if genre == 0 {
		return c.Trending(ctx, page)
	}

	var movies, shows []catalog.Item
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		movies, err = c.Discover(gctx, catalog.KindMovie, genre, page)
		return err
	})
	g.Go(func() error {
		var err error
		shows, err = c.Discover(gctx, catalog.KindTV, genre, page)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return append(movies, shows...), nil
}

// SearchMulti runs one multi-search query and returns the first page of
// movie and show matches.
func (c *Client) SearchMulti(ctx context.Context, query string) ([]catalog.Item, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	params.Set("page", "1")

	var p resultPage
	if err := c.get(ctx, "/search/multi", params, &p); err != nil {
		return nil, err
	}
	return normalizeAll(p.Results, ""), nil
}

type genreList struct {
	Genres []catalog.Genre `json:"genres"`
}

// Genres returns the movie and show genre lists merged by id, sorted by name.
func (c *Client) Genres(ctx context.Context) ([]catalog.Genre, error) {
	var movie, tv genreList
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.get(gctx, "/genre/movie/list", nil, &movie) })
	g.Go(func() error { return c.get(gctx, "/genre/tv/list", nil, &tv) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	var out []catalog.Genre
	for _, gen := range append(movie.Genres, tv.Genres...) {
		if seen[gen.ID] {
			continue
		}
		seen[gen.ID] = true
		out = append(out, gen)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
