package tmdb

import "github.com/rubiojr/cinegrid/pkg/catalog"

// result is a title as returned by the list endpoints. Movies carry title
// and release_date, shows carry name and first_air_date.
type result struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	Overview     string  `json:"overview"`
	VoteAverage  float64 `json:"vote_average"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	GenreIDs     []int   `json:"genre_ids"`
	MediaType    string  `json:"media_type"`
}

type resultPage struct {
	Page         int      `json:"page"`
	Results      []result `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// normalize converts an upstream result. Discover endpoints omit
// media_type, so fallback names the kind implied by the endpoint.
func normalize(r result, fallback catalog.Kind) catalog.Item {
	it := catalog.Item{
		ID:           r.ID,
		Title:        r.Title,
		PosterPath:   r.PosterPath,
		BackdropPath: r.BackdropPath,
		Overview:     r.Overview,
		Rating:       r.VoteAverage,
		ReleaseDate:  r.ReleaseDate,
		GenreIDs:     r.GenreIDs,
		Kind:         catalog.Kind(r.MediaType),
	}
	if it.Title == "" {
		it.Title = r.Name
	}
	if it.ReleaseDate == "" {
		it.ReleaseDate = r.FirstAirDate
	}
	if it.ReleaseDate == "" {
		it.ReleaseDate = catalog.UnknownDate
	}
	if it.GenreIDs == nil {
		it.GenreIDs = []int{}
	}
	if it.Kind == "" {
		it.Kind = fallback
	}
	return it
}

// normalizeAll converts a page of results and drops entries that are not
// movies or shows (people, collections).
func normalizeAll(rs []result, fallback catalog.Kind) []catalog.Item {
	items := make([]catalog.Item, 0, len(rs))
	for _, r := range rs {
		it := normalize(r, fallback)
		if !it.Kind.Valid() {
			continue
		}
		items = append(items, it)
	}
	return items
}
