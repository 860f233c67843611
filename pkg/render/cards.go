package render

import (
	"embed"
	"html/template"
	"strings"

	"github.com/rubiojr/cinegrid/pkg/layout"
)

//go:embed templates/*.html
var templateFS embed.FS

func mustTemplate(name string) *template.Template {
	return template.Must(template.New(name).Funcs(GetTemplateFuncs()).ParseFS(templateFS, "templates/"+name, "templates/favorite.html"))
}

// cardRenderer renders every card of one role with one template.
type cardRenderer struct {
	role     layout.Role
	template *template.Template
}

func (r *cardRenderer) Render(card Card) template.HTML {
	var buf strings.Builder
	if err := r.template.Execute(&buf, card); err != nil {
		return template.HTML("<!-- error rendering " + r.role.String() + " card -->")
	}
	return template.HTML(buf.String())
}

func (r *cardRenderer) CanRender(card Card) bool {
	return card.Slot.Role == r.role
}

func (r *cardRenderer) Role() layout.Role {
	return r.role
}

// NewFeaturedRenderer renders the full-width hero: backdrop, overview and
// platform badge.
func NewFeaturedRenderer() CardRenderer {
	return &cardRenderer{role: layout.Featured, template: mustTemplate("featured.html")}
}

// NewLargeRenderer renders the tall card next to the hero.
func NewLargeRenderer() CardRenderer {
	return &cardRenderer{role: layout.Large, template: mustTemplate("large.html")}
}

// NewStandardRenderer renders the poster card used everywhere else.
func NewStandardRenderer() CardRenderer {
	return &cardRenderer{role: layout.Standard, template: mustTemplate("standard.html")}
}
