// Package catalog defines the normalized title shape shared by every
// cinegrid component: the upstream client produces Items, the search
// aggregator ranks them, the layout assigner sizes them and the favorites
// store keeps denormalized copies of them.
package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the media kind of a catalog entry.
type Kind string

const (
	KindMovie Kind = "movie"
	KindTV    Kind = "tv"
)

// Valid reports whether k is one of the browsable kinds.
func (k Kind) Valid() bool {
	return k == KindMovie || k == KindTV
}

// Label is the human label used by the UI.
func (k Kind) Label() string {
	if k == KindTV {
		return "Series"
	}
	return "Movie"
}

// ParseKind accepts "movie", "tv" and the "series" alias.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie":
		return KindMovie, nil
	case "tv", "series":
		return KindTV, nil
	}
	return "", fmt.Errorf("unknown media kind %q", s)
}

// UnknownDate is the release date shown when upstream has none.
const UnknownDate = "TBA"

// Item is a single movie or TV series record.
//
// Items are values: a fresh slice is produced on every fetch and pages are
// only ever merged by concatenation.
type Item struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	PosterPath   string  `json:"poster_path,omitempty"`
	BackdropPath string  `json:"backdrop_path,omitempty"`
	Overview     string  `json:"overview"`
	Rating       float64 `json:"vote_average"`
	ReleaseDate  string  `json:"release_date"`
	GenreIDs     []int   `json:"genre_ids"`
	Kind         Kind    `json:"media_type"`
	Platform     string  `json:"platform,omitempty"`
}

// Key identifies an item across kinds. Upstream movie and TV ids share a
// number space, so the bare ID is not unique on its own.
type Key struct {
	Kind Kind
	ID   int
}

func (k Key) String() string {
	return string(k.Kind) + "-" + strconv.Itoa(k.ID)
}

// ParseKey parses the "<kind>-<id>" form produced by Key.String.
func ParseKey(s string) (Key, error) {
	kind, id, ok := strings.Cut(s, "-")
	if !ok {
		return Key{}, fmt.Errorf("malformed title key %q", s)
	}
	k, err := ParseKind(kind)
	if err != nil {
		return Key{}, err
	}
	n, err := strconv.Atoi(id)
	if err != nil || n <= 0 {
		return Key{}, fmt.Errorf("malformed title id %q", id)
	}
	return Key{Kind: k, ID: n}, nil
}

// Key returns the (kind, id) identity of the item.
func (it Item) Key() Key {
	return Key{Kind: it.Kind, ID: it.ID}
}

// ClampedRating returns the rating limited to [0,10].
func (it Item) ClampedRating() float64 {
	r := it.Rating
	if math.IsNaN(r) || r < 0 {
		return 0
	}
	if r > 10 {
		return 10
	}
	return r
}

// RatingLabel renders the rating with one decimal.
func (it Item) RatingLabel() string {
	return strconv.FormatFloat(it.ClampedRating(), 'f', 1, 64)
}

// Year returns the leading year of the release date, or "TBA".
func (it Item) Year() string {
	if it.ReleaseDate == "" || it.ReleaseDate == UnknownDate {
		return UnknownDate
	}
	year, _, _ := strings.Cut(it.ReleaseDate, "-")
	return year
}

// HasPlatform reports whether a provider label was resolved.
func (it Item) HasPlatform() bool {
	return it.Platform != ""
}

// Genre is an upstream genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
