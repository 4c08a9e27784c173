// Package view renders the storefront pages from embedded html/template files.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gosimple/slug"

	"github.com/mrops-br/restyle-storefront/internal/app/dto"
	"github.com/mrops-br/restyle-storefront/internal/domain"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/auth"
)

//go:embed templates
var templatesFS embed.FS

// Page names accepted by Renderer.Render
const (
	PageHome      = "home"
	PageSearch    = "search"
	PageProduct   = "product"
	PageNotFound  = "not_found"
	PageFavorites = "favorites"
	PageAccount   = "account"
	PageSignIn    = "sign_in"
)

// Page is the data every template receives
type Page struct {
	Title string
	// Path is the current request path and query, used as the return
	// target of favorite toggle forms.
	Path          string
	User          *auth.User
	Favorites     domain.Favorites
	FavoriteCount int
	Data          any
}

type HomeData struct {
	Sections   *dto.HomeSections
	Categories []string
}

type SearchData struct {
	Request    dto.SearchRequest
	Categories []string
	Products   []*domain.Product
}

type ProductData struct {
	Product *domain.Product
	Related []*domain.Product
}

type ProductListData struct {
	Products []*domain.Product
}

type SignInData struct {
	Email    string
	Error    string
	Callback string
}

// card is the input of the shared product card partial
type card struct {
	Product  *domain.Product
	Favorite bool
	Return   string
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"price":    formatPrice,
	"category": categoryLabel,
	"slug":     slug.Make,
	"bound":    formatBound,
	"card": func(p *domain.Product, favs domain.Favorites, returnTo string) card {
		return card{Product: p, Favorite: favs != nil && favs.IsFavorite(p.ID), Return: returnTo}
	},
	"plural": func(n int, one, many string) string {
		if n == 1 {
			return one
		}
		return many
	},
}

// NewRenderer parses the layout, partials and every page template
func NewRenderer() (*Renderer, error) {
	base, err := template.New("layout").Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	files, err := fs.Glob(templatesFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), ".html")

		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if pages[name], err = clone.ParseFS(templatesFS, file); err != nil {
			return nil, fmt.Errorf("failed to parse page %s: %w", name, err)
		}
	}

	return &Renderer{pages: pages}, nil
}

// Render executes the named page into w with the given status
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page *Page) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", page); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func formatPrice(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

func formatBound(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// categoryLabel capitalizes the first letter: "one-piece" -> "One-piece"
func categoryLabel(c string) string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(c[:1]) + c[1:]
}
