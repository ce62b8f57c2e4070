// internal/form/actions.go
//
// Forms subsystem: post-submit actions.
//
// Context
//   A FormDef may contain default actions.  ExecuteActions dispatches each
//   one in YAML order after validation succeeds:
//
//     log    writes the accepted record to the operator log together with
//            request details (browser, device, country).
//     toast  queues a transient notification for the next page view, or
//            hands it to ActionCtx.Notify when there is no browser.
//
//   Errors are logged but not returned, keeping the user flow uninterrupted.
//
// Style
//   Two-space sentence spacing, Oxford comma, concise inline notes.
//
//------------------------------------------------------------------------------

package form

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/yanizio/askform/internal/logger"
	"github.com/yanizio/askform/internal/notify"
	"github.com/yanizio/askform/internal/requestinfo"
)

// ActionCtx carries request-scoped helpers for action execution.  Writer
// and Request are nil outside HTTP (the terminal filler); Notify, when set,
// receives toasts instead of the cookie.
type ActionCtx struct {
	Ctx     context.Context
	Writer  http.ResponseWriter
	Request *http.Request
	Notify  func(notify.Toast)
}

// ExecuteActions performs all YAML-declared actions.
func ExecuteActions(formID string, data Values, actx ActionCtx) {
	if actx.Ctx == nil {
		actx.Ctx = context.Background()
	}
	fd, ok := GetFormDef(formID)
	if !ok || len(fd.Actions) == 0 {
		return
	}

	for _, ac := range fd.Actions {
		switch ac.Type {
		case "log":
			runLog(fd, data, actx)
		case "toast":
			if err := runToast(ac.Params, actx); err != nil {
				logErr(actx, fd.ID, "toast", err)
			}
		default:
			logWarn(actx, fd.ID, ac.Type, "unsupported action")
		}
	}
}

// -----------------------------------------------------------------------------
// Log action
// -----------------------------------------------------------------------------

func runLog(fd *FormDef, data Values, actx ActionCtx) {
	kv := []any{"form", fd.ID, "record", map[string]any(data)}
	if info := requestinfo.FromContext(actx.Ctx); info != nil {
		kv = append(kv,
			"browser", info.UA.Browser,
			"device", info.UA.Device,
			"bot", info.UA.IsBot,
			"country", info.Geo.CountryISO,
		)
	}
	logger.FromContext(actx.Ctx).Infow("form submission accepted", kv...)
}

// -----------------------------------------------------------------------------
// Toast action
// -----------------------------------------------------------------------------

func runToast(p map[string]any, actx ActionCtx) error {
	t, err := ToastFromParams(p)
	if err != nil {
		return err
	}
	switch {
	case actx.Notify != nil:
		actx.Notify(t)
		return nil
	case actx.Writer != nil && actx.Request != nil:
		return notify.Set(actx.Writer, actx.Request, t)
	default:
		return fmt.Errorf("toast action has no destination")
	}
}

// ToastFromParams reads text, kind, position, and duration from an action
// block.  Duration accepts a Go duration string or milliseconds.
func ToastFromParams(p map[string]any) (notify.Toast, error) {
	t := notify.Toast{
		Text:     str(p["text"]),
		Kind:     str(p["kind"]),
		Position: str(p["position"]),
	}
	if t.Text == "" {
		return t, fmt.Errorf("toast action requires 'text'")
	}
	switch d := p["duration"].(type) {
	case nil:
	case string:
		dur, err := time.ParseDuration(d)
		if err != nil {
			return t, fmt.Errorf("toast duration: %w", err)
		}
		t.Duration = dur
	case int:
		t.Duration = time.Duration(d) * time.Millisecond
	default:
		return t, fmt.Errorf("toast duration has unsupported type %T", d)
	}
	return t.Defaults(), nil
}

func str(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case int:
		return strconv.Itoa(s)
	}
	return ""
}

// -----------------------------------------------------------------------------
// Logging helpers
// -----------------------------------------------------------------------------

func logErr(actx ActionCtx, formID, action string, err error) {
	logger.FromContext(actx.Ctx).Errorw(
		"form action failed",
		"form", formID, "action", action, "error", err.Error(),
	)
}

func logWarn(actx ActionCtx, formID, action, msg string) {
	logger.FromContext(actx.Ctx).Warnw(
		"form action warning",
		"form", formID, "action", action, "warning", msg,
	)
}
