// Package render turns catalog items into grid card HTML.
//
// A card's look depends on the layout role of its slot: the featured hero,
// the tall large card and the standard poster card each have a renderer.
// Renderers are collected in a registry; the first one that claims a card
// renders it and the standard renderer is the fallback.
package render

import (
	"html/template"
	"sync"

	"github.com/rubiojr/cinegrid/pkg/catalog"
	"github.com/rubiojr/cinegrid/pkg/layout"
)

// Card is everything a card template needs.
type Card struct {
	Item        catalog.Item
	Slot        layout.Slot
	PosterURL   string
	BackdropURL string
	Favorite    bool
	SignedIn    bool
}

// Key returns the "<kind>-<id>" identity used in DOM ids and forms.
func (c Card) Key() string {
	return c.Item.Key().String()
}

// CardRenderer renders cards of one presentation role.
type CardRenderer interface {
	Render(card Card) template.HTML
	CanRender(card Card) bool
	Role() layout.Role
}

// RendererRegistry manages a collection of CardRenderer implementations plus
// a fallback used when no specific renderer can handle a card.
type RendererRegistry struct {
	mu              sync.RWMutex
	renderers       []CardRenderer
	defaultRenderer CardRenderer
}

// NewRendererRegistry creates an empty registry with the standard card as
// fallback.
func NewRendererRegistry() *RendererRegistry {
	return &RendererRegistry{
		renderers:       make([]CardRenderer, 0),
		defaultRenderer: NewStandardRenderer(),
	}
}

// DefaultRegistry returns a registry with the featured and large renderers.
func DefaultRegistry() *RendererRegistry {
	reg := NewRendererRegistry()
	reg.Register(NewFeaturedRenderer())
	reg.Register(NewLargeRenderer())
	return reg
}

// Register adds a renderer to the registry.
func (r *RendererRegistry) Register(renderer CardRenderer) {
	if renderer == nil {
		return
	}
	r.mu.Lock()
	r.renderers = append(r.renderers, renderer)
	r.mu.Unlock()
}

// Render selects the first renderer whose CanRender returns true.
func (r *RendererRegistry) Render(card Card) template.HTML {
	r.mu.RLock()
	renderers := r.renderers
	def := r.defaultRenderer
	r.mu.RUnlock()

	for _, renderer := range renderers {
		if renderer.CanRender(card) {
			return renderer.Render(card)
		}
	}

	if def != nil {
		return def.Render(card)
	}
	return template.HTML("<!-- no renderer available -->")
}

// GetRenderer returns the first matching renderer or nil.
func (r *RendererRegistry) GetRenderer(card Card) CardRenderer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, renderer := range r.renderers {
		if renderer.CanRender(card) {
			return renderer
		}
	}
	return nil
}

// SetDefaultRenderer overrides the fallback renderer.
func (r *RendererRegistry) SetDefaultRenderer(cr CardRenderer) {
	r.mu.Lock()
	r.defaultRenderer = cr
	r.mu.Unlock()
}
