package types

import (
	"html/template"

	"github.com/rubiojr/cinegrid/pkg/auth"
	"github.com/rubiojr/cinegrid/pkg/catalog"
)

// PageData represents data passed to templates
type PageData struct {
	Title    string
	Version  string
	User     *auth.User
	Initials string

	// Listing state
	Query   string
	Filter  catalog.MediaFilter
	Filters []catalog.MediaFilter
	Genre   int
	Genres  []catalog.Genre
	Heading string
	Cards   []template.HTML
	Count   int
	Page    int
	NextURL string // empty when there is nothing more to load
	Search  bool

	Error   string
	Success string

	// Detail page
	Detail *TitleDetail

	// Login page
	Email string
	Next  string
}

// TitleDetail is the single title view.
type TitleDetail struct {
	Item        catalog.Item
	Key         string
	BackdropURL string
	PosterURL   string
	TrailerURL  string
	Genres      []string
	Favorite    bool
}
