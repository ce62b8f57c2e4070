// internal/widget/registry.go
//
// Widget registry and lookup helpers.
//
// A **Widget** is a reusable view fragment rendered inside a page.  Forms
// are the main producer: every registered FormDef registers a widget under
// its own ID (see form.Register), so a page template can embed it with:
//
//	{{ widget "contact/ask" (dict "values" .Values "errors" .Errors) }}
//
// Params are optional.  The view helper looks up the widget, invokes
// `Render`, and returns `template.HTML`.
package widget

import (
	"sort"
	"sync"
)

// Widget represents a view fragment that can be embedded inside any page
// template.  Render returns the generated HTML and a cache policy hint that
// mirrors view.CachePolicy (a form returns CacheSkip because it carries a
// fresh CSRF token).
//
// Errors should be returned, not written to an http.ResponseWriter, so the
// calling helper can decide how to surface the failure.
//
// Render MUST be concurrency-safe; multiple goroutines may call it.
type Widget interface {
	ID() string
	Render(rctx any, params map[string]any) (html string, policy int, err error)
}

var (
	mu       sync.RWMutex
	registry = map[string]Widget{}
)

// Register adds w.  A later registration with the same ID replaces the
// earlier one, which is how on-disk form overrides take effect.
func Register(w Widget) {
	mu.Lock()
	registry[w.ID()] = w
	mu.Unlock()
}

// Lookup returns the widget or nil.
func Lookup(key string) Widget {
	mu.RLock()
	defer mu.RUnlock()
	return registry[key]
}

// Keys returns registered IDs in lexical order (used by /debug and tests).
func Keys() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
