// Package web holds the page templates and static assets, embedded into the
// binary.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/gin-contrib/multitemplate"
)

//go:embed templates
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

var pages = map[string]string{
	"game.html": "templates/pages/game.html",
	"404.html":  "templates/pages/404.html",
}

// NewRenderer builds the gin HTML renderer: every page is rendered inside
// the base layout.
func NewRenderer() (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()

	funcMap := template.FuncMap{
		"safe": func(s string) template.HTML {
			return template.HTML(s) //nolint: gosec // fragments are rendered by handlers
		},
	}

	base, err := fs.ReadFile(templatesFS, "templates/layouts/base.html")
	if err != nil {
		return nil, fmt.Errorf("failed to read base layout: %w", err)
	}

	for name, path := range pages {
		page, err := fs.ReadFile(templatesFS, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %s: %w", name, err)
		}
		r.AddFromStringsFuncs(name, funcMap, string(base), string(page))
	}

	return r, nil
}

// Static returns the static assets rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
