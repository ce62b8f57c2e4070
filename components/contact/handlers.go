// components/contact/handlers.go
//
// HTTP handlers for the contact component.
//
// Notes
// -----
// • Validation failures are user input, not faults: they are answered with
//   422 and inline messages and logged at debug level only.
// • The live socket validates one frame at a time and closes after two
//   idle minutes.
// • Oxford commas, two spaces after periods.

package contact

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/yanizio/askform/internal/core"
	"github.com/yanizio/askform/internal/form"
	"github.com/yanizio/askform/internal/logger"
	"github.com/yanizio/askform/internal/metrics"
	"github.com/yanizio/askform/internal/view"
)

const (
	liveIdle      = 2 * time.Minute
	liveReadLimit = 8 << 10 // bytes per frame
)

/*──────────────────────────── page + submit ────────────────────────────────*/

// page renders a blank form, plus the toast queued by a previous submit.
func (c *Component) page(w http.ResponseWriter, r *http.Request) {
	ctx := core.New(w, r)
	ctx.TakeToast()
	c.render(ctx, w, http.StatusOK, DefaultState().Values(), nil, time.Time{})
}

// submit validates the whole record.  Success runs OnSubmit once and
// redirects so a refresh cannot re-post; failure re-renders with errors.
func (c *Component) submit(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	vals, err := form.HandleSubmit(FormID, r)
	switch {
	case err == nil:
	case form.IsValidationError(err):
		errs := form.Fields(err)
		log.Debugw("submission rejected", "form", FormID, "errors", len(errs))
		at := form.CarriedRenderTime(r.PostForm.Get("render_ts"))
		c.render(core.New(w, r), w, http.StatusUnprocessableEntity, vals, errs, at)
		return
	default:
		log.Warnw("submission unreadable", "form", FormID, "err", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	c.onSubmit(form.ActionCtx{Ctx: r.Context(), Writer: w, Request: r}, FromValues(vals))
	http.Redirect(w, r, c.path("/"), http.StatusSeeOther)
}

// render writes the page.  A zero renderedAt stamps a fresh render_ts.
func (c *Component) render(ctx *core.Context, w http.ResponseWriter, status int, vals form.Values, errs []form.ErrorField, renderedAt time.Time) {
	if fd, ok := form.GetFormDef(FormID); ok {
		ctx.Head.SetTitle(fd.Title)
	}
	data := view.Data(ctx,
		"Values", vals,
		"Errors", errs,
		"RenderedAt", renderedAt,
		"Action", c.path("/"),
		"Validate", c.path("/validate"),
		"Live", c.path("/live"),
	)
	if err := view.Render(ctx, w, status, Name, "ask", data, view.CacheDefault); err != nil {
		logger.FromContext(ctx.Request.Context()).Errorw("render failed", "template", "ask", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

/*──────────────────────────── field validation ─────────────────────────────*/

// validate answers one form-encoded field+value with {field,error,kind}.
func (c *Component) validate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	name := r.PostForm.Get("field")

	fd, _ := form.GetFormDef(FormID)
	f, ok := fd.Field(name)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"field": name, "error": "unknown field"})
		return
	}

	res, err := checkField(name, form.DecodeValue(f, r.PostForm.Get("value")))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"field": name, "error": err.Error()})
		return
	}
	metrics.LiveValidations.WithLabelValues(FormID, "http").Inc()
	writeJSON(w, http.StatusOK, res)
}

// liveFrame is one client message on the websocket.  Value is a JSON
// string for text fields and a JSON bool for terms.
type liveFrame struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// live upgrades to a websocket and validates frames until the client goes
// away or stays idle for liveIdle.
func (c *Component) live(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	// The server's write timeout would otherwise cut the socket short.
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Debugw("live accept failed", "err", err)
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(liveReadLimit)

	for {
		ctx, cancel := context.WithTimeout(r.Context(), liveIdle)
		var in liveFrame
		err := wsjson.Read(ctx, conn, &in)
		if err != nil {
			cancel()
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			if errors.Is(err, context.DeadlineExceeded) {
				conn.Close(websocket.StatusNormalClosure, "idle")
				return
			}
			log.Debugw("live read failed", "err", err)
			return
		}

		res, ferr := checkField(in.Field, in.Value)
		if ferr != nil {
			res = form.ErrorField{Name: in.Field, Message: "unknown field"}
		} else {
			metrics.LiveValidations.WithLabelValues(FormID, "ws").Inc()
		}
		err = wsjson.Write(ctx, conn, res)
		cancel()
		if err != nil {
			log.Debugw("live write failed", "err", err)
			return
		}
	}
}

// checkField returns the reply for one field; a passing value yields an
// empty error and kind.
func checkField(name string, value any) (form.ErrorField, error) {
	fe, err := ValidateField(name, value)
	if err != nil {
		return form.ErrorField{}, err
	}
	if fe == nil {
		return form.ErrorField{Name: name}, nil
	}
	return *fe, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
