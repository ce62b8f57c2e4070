// internal/form/widget.go
//
// Forms subsystem: widget integration.
//
// Context
//   Templates embed form markup through the widget system.  The concrete
//   widget.Widget interface expects:
//
//       Render(rctx any, params map[string]any) (string, int, error)
//
//   This adapter wraps RenderForm and always returns view.CacheSkip so pages
//   never cache CSRF tokens.
//
//------------------------------------------------------------------------------

package form

import (
	"time"

	"github.com/yanizio/askform/internal/view"
	"github.com/yanizio/askform/internal/widget"
)

// Ensure compile-time compliance with widget.Widget.
var _ widget.Widget = (*formWidget)(nil)

type formWidget struct{ id string }

// ID implements widget.Widget.
func (w *formWidget) ID() string { return w.id }

// Render converts the FormDef into HTML.  params may include:
//
//   - "values"   form.Values       – values to pre-populate inputs
//   - "errors"   []form.ErrorField – errors from the last submit
//   - "action"   string            – POST target
//   - "validate" string            – single-field HTTP endpoint
//   - "live"     string            – single-field websocket endpoint
//   - "rendered_at" time.Time      – render_ts to carry over from the last post
//
// It always returns view.CacheSkip so every render gets a fresh CSRF token.
func (w *formWidget) Render(_ any, params map[string]any) (string, int, error) {
	var opts RenderOptions
	if params != nil {
		opts.Prefill, _ = params["values"].(Values)
		opts.Errors, _ = params["errors"].([]ErrorField)
		opts.Action, _ = params["action"].(string)
		opts.Validate, _ = params["validate"].(string)
		opts.Live, _ = params["live"].(string)
		opts.RenderedAt, _ = params["rendered_at"].(time.Time)
	}

	htmlOut, err := RenderForm(w.id, opts)
	if err != nil {
		return "", int(view.CacheSkip), err
	}
	// template.HTML is a string type; convert to satisfy the interface.
	return string(htmlOut), int(view.CacheSkip), nil
}

// injectWidgetRegistration is called by Register after each FormDef loads.
func injectWidgetRegistration(fd *FormDef) { widget.Register(&formWidget{id: fd.ID}) }
