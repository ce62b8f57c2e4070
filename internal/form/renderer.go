// internal/form/renderer.go
//
// Forms subsystem: HTML renderer.
//
// Context
//   Given a registered FormDef this file converts the definition into safe,
//   accessible HTML markup.  The renderer lays fields out on a two-column
//   grid (width: half | full), applies HTML5 validation attributes, shows
//   inline errors from a previous submit, injects a CSRF token and a
//   render-timestamp hidden input, and honours pre-fill data (the user's
//   previous entries, or the form defaults).
//
// Workflow
//   •  RenderForm looks up the FormDef by ID and writes each field via
//      writeField, followed by the hidden inputs and a full-width submit
//      button.
//   •  Required, minlength, maxlength, pattern, and placeholder attributes
//      are attached where relevant.  Select/radio options are rendered from
//      the YAML Options slice and labelled in title case.
//   •  Every field gets a <span class="error" id="err-{name}"> which is
//      filled here on re-render, or by the browser script while editing.
//   •  The caller receives the final HTML as template.HTML so the surrounding
//      template does not double-escape the markup.
//
// Style
//   Output HTML is deliberately plain; themes style via the class hooks
//   ask-form, form-grid, form-field, span-half, span-full, and has-error.
//   Each input gets id="fld-{name}".
//
//------------------------------------------------------------------------------

package form

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strconv"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RenderOptions bundles optional parameters influencing HTML output.
type RenderOptions struct {
	// Prefill provides initial field values keyed by field name.  Nil means
	// the form defaults.
	Prefill Values
	// Errors from a previous submit.  Entries without a Name are shown as a
	// form-level banner.
	Errors []ErrorField
	// Action is the form's POST target.  Empty posts to the current URL.
	Action string
	// Validate and Live are the single-field validation endpoints the
	// browser script uses (HTTP and websocket).  Empty disables each.
	Validate string
	Live     string
	// RenderedAt is written as render_ts.  Zero means now; a re-render
	// passes the first render's time (see CarriedRenderTime).
	RenderedAt time.Time
}

// RenderForm returns the HTML markup for the specified form ID.
// Callers typically pass the resulting template.HTML into a widget response.
func RenderForm(formID string, opts RenderOptions) (template.HTML, error) {
	fd, ok := GetFormDef(formID)
	if !ok {
		return "", fmt.Errorf("RenderForm: %w %q", ErrUnknownForm, formID)
	}

	pre := opts.Prefill
	if pre == nil {
		pre = DefaultValues(formID)
	}
	errs := ByField(opts.Errors)

	var buf bytes.Buffer
	buf.WriteString(`<form class="ask-form" method="post" novalidate`)
	buf.WriteString(` data-form="` + html.EscapeString(fd.ID) + `"`)
	if opts.Action != "" {
		buf.WriteString(` action="` + html.EscapeString(opts.Action) + `"`)
	}
	if opts.Validate != "" {
		buf.WriteString(` data-validate="` + html.EscapeString(opts.Validate) + `"`)
	}
	if opts.Live != "" {
		buf.WriteString(` data-live="` + html.EscapeString(opts.Live) + `"`)
	}
	buf.WriteString(">\n")

	if fd.Title != "" {
		buf.WriteString(`<h1 class="form-title">` + html.EscapeString(fd.Title) + "</h1>\n")
	}

	// Form-level banner (CSRF, timing).
	for _, e := range opts.Errors {
		if e.Name == "" {
			buf.WriteString(`<div class="form-error" role="alert">` + html.EscapeString(e.Message) + "</div>\n")
		}
	}

	buf.WriteString(`<div class="form-grid">` + "\n")
	title := cases.Title(language.English) // not safe for concurrent use
	for i := range fd.Fields {
		f := &fd.Fields[i]
		var fe *ErrorField
		if e, ok := errs[f.Name]; ok {
			fe = &e
		}
		if err := writeField(&buf, f, pre[f.Name], fe, title); err != nil {
			return "", err
		}
	}
	buf.WriteString("</div>\n")

	// Hidden meta inputs.
	buf.WriteString(fmt.Sprintf(`<input type="hidden" name="csrf_token" value="%s">`+"\n", csrfGenerateToken()))
	at := opts.RenderedAt
	if at.IsZero() {
		at = time.Now()
	}
	buf.WriteString(fmt.Sprintf(`<input type="hidden" name="render_ts" value="%d">`+"\n", at.UnixMicro()))

	buf.WriteString(`<button type="submit" class="form-submit">` + html.EscapeString(fd.SubmitLabel()) + "</button>\n")
	buf.WriteString(`</form>`)
	return template.HTML(buf.String()), nil
}

// writeField emits HTML for an individual field into buf, applying prefill,
// validation attributes, and any current error.
func writeField(buf *bytes.Buffer, f *FieldDef, val any, fe *ErrorField, title cases.Caser) error {
	name := html.EscapeString(f.Name)
	str, _ := val.(string)

	// Container
	span := "span-full"
	if f.Width == "half" {
		span = "span-half"
	}
	cls := "form-field " + span
	if fe != nil {
		cls += " has-error"
	}
	buf.WriteString(`<div class="` + cls + `" data-field="` + name + `">` + "\n")

	// Shared attributes
	idAttr := `id="fld-` + name + `"`
	nameAttr := `name="` + name + `"`
	aria := ` aria-describedby="err-` + name + `"`
	if fe != nil {
		aria += ` aria-invalid="true"`
	}

	// Label first (for accessibility); checkboxes put it after the box.
	if f.Type != "checkbox" {
		buf.WriteString(`<label for="fld-` + name + `">` + html.EscapeString(f.Label) + `</label>` + "\n")
	}

	switch f.Type {
	case "text", "email":
		buf.WriteString(`<input ` + idAttr + ` ` + nameAttr + ` type="` + f.Type + `"` + aria)
		writeTextAttrs(buf, f)
		if f.Pattern != "" {
			buf.WriteString(` pattern="` + html.EscapeString(f.Pattern) + `"`)
		}
		if str != "" {
			buf.WriteString(` value="` + html.EscapeString(str) + `"`)
		}
		buf.WriteString(`>` + "\n")

	case "textarea":
		buf.WriteString(`<textarea ` + idAttr + ` ` + nameAttr + ` rows="5"` + aria)
		writeTextAttrs(buf, f)
		buf.WriteString(`>`)
		buf.WriteString(html.EscapeString(str))
		buf.WriteString(`</textarea>` + "\n")

	case "select":
		buf.WriteString(`<select ` + idAttr + ` ` + nameAttr + aria)
		if f.Required {
			buf.WriteString(` required`)
		}
		buf.WriteString(`>` + "\n")
		for _, opt := range f.Options {
			sel := ""
			if str == opt {
				sel = ` selected`
			}
			buf.WriteString(`<option value="` + html.EscapeString(opt) + `"` + sel + `>` +
				html.EscapeString(title.String(opt)) + `</option>` + "\n")
		}
		buf.WriteString(`</select>` + "\n")

	case "checkbox":
		checked := ""
		if b, _ := val.(bool); b {
			checked = ` checked`
		}
		buf.WriteString(`<div class="checkbox-option">` + "\n")
		buf.WriteString(`<input ` + idAttr + ` ` + nameAttr + ` type="checkbox" value="true"` + checked + aria)
		if f.Required {
			buf.WriteString(` required`)
		}
		buf.WriteString(`>` + "\n")
		buf.WriteString(`<label for="fld-` + name + `">` + html.EscapeString(f.Label) + `</label>` + "\n")
		buf.WriteString(`</div>` + "\n")

	case "radio":
		// Render each option as separate radio input
		buf.WriteString(`<div class="radio-group" role="radiogroup"` + aria + `>` + "\n")
		for i, opt := range f.Options {
			radioID := fmt.Sprintf("fld-%s-%d", name, i)
			checked := ""
			if str == opt {
				checked = ` checked`
			}
			buf.WriteString(`<div class="radio-option">` + "\n")
			buf.WriteString(`<input id="` + radioID + `" ` + nameAttr + ` type="radio" value="` + html.EscapeString(opt) + `"` + checked)
			if f.Required {
				buf.WriteString(` required`)
			}
			buf.WriteString(`>` + "\n")
			buf.WriteString(`<label for="` + radioID + `">` + html.EscapeString(title.String(opt)) + `</label>` + "\n")
			buf.WriteString(`</div>` + "\n")
		}
		buf.WriteString(`</div>` + "\n")

	default:
		return fmt.Errorf("writeField: unsupported field type %q in form field %s", f.Type, f.Name)
	}

	// Error slot (populated on server re-render or by the browser script).
	msg := ""
	if fe != nil {
		msg = html.EscapeString(fe.Message)
	}
	buf.WriteString(`<span class="error" id="err-` + name + `" aria-live="polite">` + msg + `</span>` + "\n")

	buf.WriteString(`</div>` + "\n")
	return nil
}

// writeTextAttrs adds the attributes shared by inputs and textareas.
func writeTextAttrs(buf *bytes.Buffer, f *FieldDef) {
	if f.Placeholder != "" {
		buf.WriteString(` placeholder="` + html.EscapeString(f.Placeholder) + `"`)
	}
	if f.Required {
		buf.WriteString(` required`)
	}
	if f.MinLength > 0 {
		buf.WriteString(` minlength="` + strconv.Itoa(f.MinLength) + `"`)
	}
	if f.MaxLength > 0 {
		buf.WriteString(` maxlength="` + strconv.Itoa(f.MaxLength) + `"`)
	}
}

// csrfGenerateToken wraps GenerateToken for the renderer.
func csrfGenerateToken() string {
	token, err := GenerateToken() // from csrf.go
	if err != nil {
		// Unverifiable placeholder; the submit is rejected with a clear message.
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return token
}
