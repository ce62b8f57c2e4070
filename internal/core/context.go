// internal/core/context.go
//
// Central per-request context.
//
// Context
// -------
// Every page handler builds a *core.Context and passes it down to the view
// engine, widgets, and templates.  It bundles:
//
//   - Request — the original *http.Request.
//   - Writer  — convenience http.ResponseWriter.
//   - Head    — per-request <head> builder.
//   - Info    — parsed UA, geo, URL, and timestamp (nil without Enrich).
//   - Toast   — transient notification to show on this page, if any.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package core

import (
	"net/http"

	"github.com/yanizio/askform/internal/head"
	"github.com/yanizio/askform/internal/notify"
	"github.com/yanizio/askform/internal/requestinfo"
)

// Context is passed to the view engine, widgets, and templates.
type Context struct {
	Request *http.Request
	Writer  http.ResponseWriter
	Head    *head.Builder
	Info    *requestinfo.RequestInfo
	Toast   *notify.Toast
}

// New builds the Context for one request.
func New(w http.ResponseWriter, r *http.Request) *Context {
	return &Context{
		Request: r,
		Writer:  w,
		Head:    head.New(),
		Info:    requestinfo.FromContext(r.Context()),
	}
}

// TakeToast moves a queued toast, if any, onto the page.
func (c *Context) TakeToast() {
	if t, ok := notify.Take(c.Writer, c.Request); ok {
		c.Toast = &t
	}
}
