package components

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/a-h/templ"
	"github.com/rubiojr/cinegrid/cmd/web/components/types"
	"github.com/rubiojr/cinegrid/pkg/catalog"
	"github.com/rubiojr/cinegrid/pkg/render"
	"github.com/rubiojr/cinegrid/pkg/search"
)

//go:embed templates/*.html
var templateFS embed.FS

func funcs() template.FuncMap {
	f := render.GetTemplateFuncs()
	f["countLabel"] = CountLabel
	f["listURL"] = func(filter catalog.MediaFilter, genre int) string {
		return ListingURL("/", search.Params{Filter: filter, Genre: genre})
	}
	return f
}

func parsePage(name string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs()).ParseFS(templateFS, "templates/layout.html", "templates/"+name))
}

var (
	indexTmpl     = parsePage("index.html")
	titleTmpl     = parsePage("title.html")
	favoritesTmpl = parsePage("favorites.html")
	loginTmpl     = parsePage("login.html")
)

func component(t *template.Template, name string, data types.PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return t.ExecuteTemplate(w, name, data)
	})
}

// Index is the browse and search page.
func Index(data types.PageData) templ.Component {
	return component(indexTmpl, "layout", data)
}

// Grid is the fragment appended by infinite scroll: cards plus the next
// sentinel.
func Grid(data types.PageData) templ.Component {
	return component(indexTmpl, "grid", data)
}

// Title is the detail page of one title.
func Title(data types.PageData) templ.Component {
	return component(titleTmpl, "layout", data)
}

// Favorites lists the saved titles of the signed-in user.
func Favorites(data types.PageData) templ.Component {
	return component(favoritesTmpl, "layout", data)
}

// Login shows the sign-in and sign-up forms.
func Login(data types.PageData) templ.Component {
	return component(loginTmpl, "layout", data)
}
