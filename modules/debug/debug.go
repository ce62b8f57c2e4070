// modules/debug/debug.go
//
// Diagnostic module that echoes the parsed request info, the registered
// forms, and the widgets.  It answers 404 unless http.debug is enabled.
package debug

import (
	"encoding/json"
	"net/http"

	"github.com/yanizio/askform/internal/config"
	"github.com/yanizio/askform/internal/core"
	"github.com/yanizio/askform/internal/form"
	"github.com/yanizio/askform/internal/module"
	"github.com/yanizio/askform/internal/widget"
)

func init() {
	// Register at exact path /debug
	module.Register("/debug", handler)
}

// handler writes a JSON blob with selected context fields.
func handler(ctx *core.Context, w http.ResponseWriter, r *http.Request) {
	if cfg := config.Get(); cfg == nil || !cfg.HTTP.Debug {
		http.NotFound(w, r)
		return
	}

	out := map[string]any{
		"path":    r.URL.Path,
		"query":   r.URL.RawQuery,
		"ua":      r.UserAgent(),
		"info":    ctx.Info,
		"forms":   form.IDs(),
		"widgets": widget.Keys(),
	}
	if ctx.Info != nil {
		out["ua_label"] = ctx.Info.UA.Label()
	}

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}
