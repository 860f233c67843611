package catalog

// Placeholders used when a title has no artwork.
const (
	PosterPlaceholder   = "https://placehold.co/500x750/1a0b0b/FFD700?text=NO+IMAGE"
	BackdropPlaceholder = "https://placehold.co/1920x1080/1a0b0b/FFD700?text=NO+SIGNAL"
)

// Images builds artwork URLs from upstream image paths.
type Images struct {
	PosterBase   string
	BackdropBase string
}

// DefaultImages points at the public TMDB image CDN.
var DefaultImages = Images{
	PosterBase:   "https://image.tmdb.org/t/p/w500",
	BackdropBase: "https://image.tmdb.org/t/p/original",
}

// PosterURL returns the poster URL or the placeholder.
func (im Images) PosterURL(it Item) string {
	if it.PosterPath == "" {
		return PosterPlaceholder
	}
	return im.PosterBase + it.PosterPath
}

// BackdropURL returns the backdrop URL or the placeholder.
func (im Images) BackdropURL(it Item) string {
	if it.BackdropPath == "" {
		return BackdropPlaceholder
	}
	return im.BackdropBase + it.BackdropPath
}
