package tmdb

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rubiojr/cinegrid/pkg/catalog"
)

// details is the single-title shape: genres are objects instead of ids
// and media_type is absent.
type details struct {
	result
	Genres []catalog.Genre `json:"genres"`
}

// Details fetches one title.
func (c *Client) Details(ctx context.Context, kind catalog.Kind, id int) (catalog.Item, error) {
	if !kind.Valid() {
		return catalog.Item{}, fmt.Errorf("details: invalid kind %q", kind)
	}

	var d details
	if err := c.get(ctx, "/"+string(kind)+"/"+strconv.Itoa(id), nil, &d); err != nil {
		return catalog.Item{}, err
	}
	if d.GenreIDs == nil {
		d.GenreIDs = make([]int, 0, len(d.Genres))
		for _, g := range d.Genres {
			d.GenreIDs = append(d.GenreIDs, g.ID)
		}
	}
	d.MediaType = ""
	return normalize(d.result, kind), nil
}
