package render

import (
	"html/template"

	"github.com/rubiojr/cinegrid/pkg/catalog"
	"github.com/rubiojr/cinegrid/pkg/layout"
)

// Service builds cards for a list of items and renders them through a
// registry. It is safe for concurrent use.
type Service struct {
	registry *RendererRegistry
	images   catalog.Images
}

// NewService creates a Service. A nil registry means DefaultRegistry and
// zero images mean catalog.DefaultImages.
func NewService(reg *RendererRegistry, images catalog.Images) *Service {
	if reg == nil {
		reg = DefaultRegistry()
	}
	if images == (catalog.Images{}) {
		images = catalog.DefaultImages
	}
	return &Service{registry: reg, images: images}
}

// Images returns the artwork URL builder.
func (s *Service) Images() catalog.Images {
	return s.images
}

// Cards assigns layout roles to items and marks favorites. favs may be nil.
func (s *Service) Cards(items []catalog.Item, ctx layout.Context, favs map[catalog.Key]bool, signedIn bool) []Card {
	slots := layout.Assign(len(items), ctx)
	cards := make([]Card, len(slots))
	for i, slot := range slots {
		it := items[slot.Index]
		cards[i] = Card{
			Item:        it,
			Slot:        slot,
			PosterURL:   s.images.PosterURL(it),
			BackdropURL: s.images.BackdropURL(it),
			Favorite:    favs[it.Key()],
			SignedIn:    signedIn,
		}
	}
	return cards
}

// Render renders one card.
func (s *Service) Render(card Card) template.HTML {
	return s.registry.Render(card)
}

// RenderAll renders cards in order.
func (s *Service) RenderAll(cards []Card) []template.HTML {
	out := make([]template.HTML, len(cards))
	for i, c := range cards {
		out[i] = s.registry.Render(c)
	}
	return out
}
