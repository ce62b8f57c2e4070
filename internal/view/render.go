// internal/view/render.go
//
// Central view engine: template lookup, override chain, func-map injection,
// and an LRU of parsed *template.Template* sets.
//
// Public helpers
// --------------
//   - UseTheme          – install the active theme (layout + assets).
//   - RegisterComponent – make a component's embedded templates/ visible.
//   - Render            – execute a page and write it with a status code.
//   - Data              – standard page data (Ctx, Head, Toast) plus extras.
//
// Lookup precedence (first hit wins):
//   1. themes/<theme>/components/<comp>/templates/<tpl>.html
//   2. components/<comp>/templates/<tpl>.html (the component's own FS)
//
// All templates in the winning directory are parsed as one set, on top of a
// clone of the theme's layout set, so a page can `{{ template "layout" . }}`
// and fill `{{ block "content" . }}`.
//
// Execution
// ---------
// Cached sets are never executed; html/template refuses to clone a set
// after execution.  Each render clones the cached set, binds request-scoped
// helpers with Funcs, executes into a buffer, and only then writes the
// status line, so a template error can still become a clean 500.
//
// Style
// -----
// • Oxford commas, two spaces after periods.

package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/yanizio/askform/internal/cache"
	"github.com/yanizio/askform/internal/core"
	"github.com/yanizio/askform/internal/theme"
	"github.com/yanizio/askform/internal/widget"
)

//
// cache definitions
//

// CachePolicy hints how the caller wants this template cached.
type CachePolicy int

const (
	CacheDefault CachePolicy = iota // keep the parsed set in the LRU
	CacheSkip                       // never cache
)

// Parsed template sets keyed theme::comp::name; tweak capacity when
// perf-testing.
var tmplLRU = cache.New(256)

var (
	mu         sync.RWMutex
	active     *theme.Theme
	components = map[string]fs.FS{}
)

//
// registration
//

// UseTheme installs th for all subsequent renders and drops cached sets.
func UseTheme(th *theme.Theme) {
	mu.Lock()
	active = th
	mu.Unlock()
	tmplLRU.Purge()
}

// RegisterComponent exposes fsys (which must contain templates/) as the
// default templates of comp.
func RegisterComponent(comp string, fsys fs.FS) {
	mu.Lock()
	components[comp] = fsys
	mu.Unlock()
	tmplLRU.Purge()
}

//
// public helpers
//

// Data returns the standard page data merged with kv pairs.
func Data(ctx *core.Context, kv ...any) map[string]any {
	m := dict(kv...)
	m["Ctx"] = ctx
	m["Head"] = ctx.Head
	m["Toast"] = ctx.Toast
	return m
}

// Render executes the page template name of comp and writes it to w with
// status.
//
// The concrete template is chosen by execName(): a root template defined
// via {{ define "<name>" }} wins, otherwise the file "<name>.html" runs.
func Render(ctx *core.Context, w http.ResponseWriter, status int, comp, name string, data any, policy CachePolicy) error {
	t, err := load(comp, name, policy)
	if err != nil {
		return err
	}
	t, err = t.Clone()
	if err != nil {
		return fmt.Errorf("clone %s/%s: %w", comp, name, err)
	}
	t.Funcs(buildFuncMap(ctx))

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, execName(t, name), data); err != nil {
		return fmt.Errorf("execute %s/%s: %w", comp, name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}

//
// internal: load
//

// load finds and (if necessary) parses the template set for the given
// component and base name, obeying the provided cache policy.
func load(comp, name string, policy CachePolicy) (*template.Template, error) {
	mu.RLock()
	th := active
	compFS := components[comp]
	mu.RUnlock()

	if th == nil {
		return nil, fmt.Errorf("view: no theme installed")
	}

	key := strings.Join([]string{th.Name, comp, name}, "::")
	if policy != CacheSkip {
		if v, ok := tmplLRU.Get(key); ok {
			return v.(*template.Template), nil
		}
	}

	type source struct {
		fsys fs.FS
		dir  string
	}
	candidates := []source{
		{th.FS, path.Join("components", comp, "templates")},
		{compFS, "templates"},
	}

	var hit *source
	for i := range candidates {
		c := &candidates[i]
		if c.fsys == nil {
			continue
		}
		if _, err := fs.Stat(c.fsys, path.Join(c.dir, name+".html")); err == nil {
			hit = c
			break
		}
	}
	if hit == nil {
		return nil, fmt.Errorf("view: template %s/%s: %w", comp, name, fs.ErrNotExist)
	}

	t, err := th.Renderer.Clone()
	if err != nil {
		return nil, err
	}
	// Parse all *.html in the same directory so sub-templates work.
	if _, err := t.Funcs(FuncMap(nil)).ParseFS(hit.fsys, path.Join(hit.dir, "*.html")); err != nil {
		return nil, fmt.Errorf("parse %s/%s: %w", comp, name, err)
	}

	if policy != CacheSkip {
		tmplLRU.Add(key, t)
	}
	return t, nil
}

//
// func-map builders
//

// FuncMap returns every helper name templates may use, bound to ctx.  With
// a nil ctx it serves as the parse-time placeholder map.
func FuncMap(ctx *core.Context) template.FuncMap {
	var asset func(string) string
	mu.RLock()
	if active != nil {
		asset = active.AssetFunc
	}
	mu.RUnlock()

	fm := theme.FuncMap(asset) // asset + request-info helpers
	fm["dict"] = dict
	fm["widget"] = widgetFunc(ctx)
	return fm
}

func buildFuncMap(ctx *core.Context) template.FuncMap { return FuncMap(ctx) }

//
// helpers
//

// execName picks the template name to execute.
//
// Priority:
//  1. A root template defined as {{ define "<name>" }}.
//  2. Otherwise the file-based template "<name>.html".
func execName(t *template.Template, name string) string {
	if tmpl := t.Lookup(name); tmpl != nil {
		return name
	}
	return name + ".html"
}

// dict builds a map in templates: {{ dict "k" 1 "k2" "v" }}.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2+3)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}

// widgetFunc renders a registered widget and returns safe HTML.  Errors are
// returned to the template engine so the page fails with a 500 instead of
// silently dropping the form.
func widgetFunc(ctx *core.Context) func(string, map[string]any) (template.HTML, error) {
	return func(key string, params map[string]any) (template.HTML, error) {
		w := widget.Lookup(key)
		if w == nil {
			return "", fmt.Errorf("widget %q not registered", key)
		}
		html, _, err := w.Render(ctx, params)
		if err != nil {
			return "", fmt.Errorf("widget %q: %w", key, err)
		}
		return template.HTML(html), nil
	}
}
