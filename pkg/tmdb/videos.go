package tmdb

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rubiojr/cinegrid/pkg/catalog"
)

type video struct {
	Key      string `json:"key"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

type videosResponse struct {
	Results []video `json:"results"`
}

// Trailer returns the YouTube key of the best trailer for a title: the
// first trailer, else the first teaser, else any YouTube video. An empty key
// means no video is available.
func (c *Client) Trailer(ctx context.Context, kind catalog.Kind, id int) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("trailer: invalid kind %q", kind)
	}

	var resp videosResponse
	path := "/" + string(kind) + "/" + strconv.Itoa(id) + "/videos"
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return "", err
	}
	return pickTrailer(resp.Results), nil
}

func pickTrailer(videos []video) string {
	for _, want := range []string{"Trailer", "Teaser", ""} {
		for _, v := range videos {
			if v.Site != "YouTube" || v.Key == "" {
				continue
			}
			if want == "" || v.Type == want {
				return v.Key
			}
		}
	}
	return ""
}

// YouTubeURL returns the watch URL for a video key.
func YouTubeURL(key string) string {
	if key == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + key
}
