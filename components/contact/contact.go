// components/contact/contact.go
//
// “Ask Your Question” component.
//
// Context
// -------
// Serves the contact form at Prefix (“/” when empty).  The form definition (forms/ask.yaml) and
// page template (templates/ask.html) are embedded, so the binary needs no
// files on disk.  Routes:
//
//   GET  /          full page; shows a queued toast once
//   POST /          submit (per-IP rate limited); 303 → / on success,
//                   422 with inline errors otherwise
//   POST /validate  one field, form-encoded field+value → JSON
//   GET  /live      websocket; JSON {field,value} frames → JSON replies
//
// Paths above are relative to Prefix.  The router that mounts Routes() must
// mount it at the same prefix, because the redirect and the form's action,
// data-validate, and data-live attributes are built from it.
//
// OnSubmit runs exactly once per accepted submission.  The default executes
// the form's YAML actions (log the record, queue the success toast).
package contact

import (
	"embed"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/askform/internal/component"
	"github.com/yanizio/askform/internal/form"
	"github.com/yanizio/askform/internal/middleware"
	"github.com/yanizio/askform/internal/view"
)

//go:embed forms/*.yaml
var formsFS embed.FS

//go:embed templates/*.html
var templatesFS embed.FS

// Name is the component and template namespace.
const Name = "contact"

func init() {
	form.MustRegisterFS(formsFS, "forms")
	view.RegisterComponent(Name, templatesFS)
	component.Register(New())
}

// Component serves the contact form.
type Component struct {
	// OnSubmit receives every accepted record.  Nil means the default.
	OnSubmit func(actx form.ActionCtx, s FormState)
	// Prefix is the path Routes() is mounted at, without a trailing slash.
	// Empty means the site root.
	Prefix string

	limit func(http.Handler) http.Handler
}

// New returns a Component with the default submit behaviour and no rate
// limit (Init installs the configured one).
func New() *Component {
	return &Component{}
}

// Name implements component.Component.
func (c *Component) Name() string { return Name }

// Init implements component.Initializer.
func (c *Component) Init(env component.Env) error {
	if cfg := env.Config(); cfg != nil {
		c.limit = middleware.RateLimit(cfg.RateLimit.PerMinute)
	}
	env.Logger().Infow("component ready", "component", Name, "form", FormID)
	return nil
}

// Routes implements component.Component.
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", c.page)
	if c.limit != nil {
		r.With(c.limit).Post("/", c.submit)
	} else {
		r.Post("/", c.submit)
	}
	r.Post("/validate", c.validate)
	r.Get("/live", c.live)
	return r
}

// path returns p under the mount prefix.
func (c *Component) path(p string) string {
	return strings.TrimSuffix(c.Prefix, "/") + p
}

// DefaultOnSubmit executes the form's YAML actions.
func DefaultOnSubmit(actx form.ActionCtx, s FormState) {
	form.ExecuteActions(FormID, s.Values(), actx)
}

func (c *Component) onSubmit(actx form.ActionCtx, s FormState) {
	if c.OnSubmit != nil {
		c.OnSubmit(actx, s)
		return
	}
	DefaultOnSubmit(actx, s)
}
