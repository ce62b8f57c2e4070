// Package theme holds the data structures that describe one visual theme.
// A Theme combines:
//
//   - Name         – the theme directory name (for example, “base”).
//   - FS           – the theme directory as an fs.FS (embedded by default).
//   - Renderer     – the parsed layout templates, never executed directly;
//     the view engine clones it per component template set.
//   - AssetFunc    – helper injected into templates so they can resolve
//     `{{ asset "css/app.css" }}` to a URL.
//
// Assets are served from the theme's assets/ directory under /assets/.
package theme

import (
	"html/template"
	"io/fs"
	"net/http"
)

// AssetPrefix is the URL path the theme's assets/ directory is mounted at.
const AssetPrefix = "/assets/"

// Theme is returned by the Manager once all templates are parsed.
type Theme struct {
	Name      string
	FS        fs.FS
	Renderer  *template.Template
	AssetFunc func(string) string
}

// New constructs a Theme with an AssetFunc that points to the assets folder.
func New(name string, fsys fs.FS, tpl *template.Template) *Theme {
	return &Theme{
		Name:     name,
		FS:       fsys,
		Renderer: tpl,
		AssetFunc: func(p string) string {
			return AssetPrefix + p
		},
	}
}

// Assets returns a handler serving assets/ under AssetPrefix.
func (t *Theme) Assets() http.Handler {
	sub, err := fs.Sub(t.FS, "assets")
	if err != nil {
		return http.NotFoundHandler()
	}
	return http.StripPrefix(AssetPrefix, http.FileServer(http.FS(sub)))
}
