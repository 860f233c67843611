package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rubiojr/cinegrid/pkg/catalog"
)

// ProviderNames maps TMDB watch provider ids to display labels. Providers
// not listed here use the name upstream reports.
var ProviderNames = map[int]string{
	2:   "Apple TV",
	3:   "Google Play Movies",
	8:   "Netflix",
	9:   "Prime Video",
	15:  "Hulu",
	31:  "HBO Max",
	68:  "Microsoft Store",
	192: "YouTube",
	283: "Crunchyroll",
	337: "Disney+",
	350: "Apple TV+",
	384: "HBO Go",
	531: "Paramount+",
	619: "Starz",
	626: "Showtime",
}

type provider struct {
	ID   int    `json:"provider_id"`
	Name string `json:"provider_name"`
}

type regionProviders struct {
	Flatrate []provider `json:"flatrate"`
	Rent     []provider `json:"rent"`
	Buy      []provider `json:"buy"`
}

type providersResponse struct {
	Results map[string]regionProviders `json:"results"`
}

// WatchProvider returns the label of the main provider for a title in a
// region: the first subscription provider, else the first rental, else the
// first purchase. An empty label means none is listed.
func (c *Client) WatchProvider(ctx context.Context, kind catalog.Kind, id int, region string) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("watch provider: invalid kind %q", kind)
	}

	var resp providersResponse
	path := "/" + string(kind) + "/" + strconv.Itoa(id) + "/watch/providers"
	if err := c.get(ctx, path, url.Values{}, &resp); err != nil {
		return "", err
	}

	rp, ok := resp.Results[region]
	if !ok {
		return "", nil
	}
	for _, list := range [][]provider{rp.Flatrate, rp.Rent, rp.Buy} {
		if len(list) == 0 {
			continue
		}
		if name, ok := ProviderNames[list[0].ID]; ok {
			return name, nil
		}
		return list[0].Name, nil
	}
	return "", nil
}
