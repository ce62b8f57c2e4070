// internal/module/registry.go
//
// A super-light registry: modules call Register(path, handler) in an init()
// function.  serve mounts every registered path as an exact GET route (no
// wildcards) ahead of the components.
//
// Handler signature:
//
//	func(ctx *core.Context, w http.ResponseWriter, r *http.Request)
//
// This gives handlers access to the per-request Context (Head builder,
// RequestInfo, etc.) without each module rebuilding it.
package module

import (
	"net/http"
	"sort"
	"sync"

	"github.com/yanizio/askform/internal/core"
)

// Handler is what modules register.
type Handler func(*core.Context, http.ResponseWriter, *http.Request)

var (
	mu       sync.RWMutex
	registry = map[string]Handler{}
)

// Register is called from module init() functions.
func Register(path string, h Handler) {
	mu.Lock()
	registry[path] = h
	mu.Unlock()
}

// Lookup returns the handler for an exact path or nil.
func Lookup(path string) Handler {
	mu.RLock()
	defer mu.RUnlock()
	return registry[path]
}

// Paths lists registered paths in lexical order.
func Paths() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for p := range registry {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// HTTP adapts the handler registered at path to http.Handler.
func HTTP(path string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := Lookup(path)
		if h == nil {
			http.NotFound(w, r)
			return
		}
		h(core.New(w, r), w, r)
	})
}
