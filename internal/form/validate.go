// internal/form/validate.go
//
// Forms subsystem: server-side validation.
//
// Context
//   The renderer outputs HTML containing a CSRF token and timestamp.  When the
//   browser posts user input, this file verifies the submission: CSRF, timing,
//   and then every field against its compiled rule (rules.go).  The same rule
//   set answers single-field checks while the user is still editing.
//
// Workflow
//   •  ValidateField checks one value for one field and is what the live
//      channel and the /validate endpoint call on every change.
//   •  ValidateValues checks a whole record in definition order and returns
//      every failure at once.  A record passes iff the slice is empty.
//   •  ValidateForm decodes posted url.Values, runs ValidateValues, and puts
//      any CSRF or timing failure first as a form-level entry.  A re-render
//      carries the original render timestamp (CarriedRenderTime), so fixing
//      one field and resubmitting quickly is not "too fast".
//   •  Values are returned exactly as entered.  Rules trim before measuring,
//      but the record handed to actions is never rewritten.
//   •  On failure callers wrap the []ErrorField in validationError (see
//      submit.go) and treat it as a user error, not a 500.
//
// Style
//   Comments follow the house guide: full sentences, two space spacing, Oxford
//   comma, and IDs like “CSRF.”
//
//------------------------------------------------------------------------------

package form

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// -----------------------------------------------------------------------------
// Error types
// -----------------------------------------------------------------------------

// ErrorKind classifies a field failure.
type ErrorKind string

const (
	KindRequired      ErrorKind = "required"
	KindInvalidFormat ErrorKind = "invalid_format"
	KindInvalidEnum   ErrorKind = "invalid_enum"
	KindTooShort      ErrorKind = "too_short"
	KindTooLong       ErrorKind = "too_long"
	KindMustAccept    ErrorKind = "must_accept"
)

// ErrorField describes a single validation failure so the template can render
// a field-level message.  Name is empty for form-level failures (CSRF,
// timing), which carry no Kind.  The JSON shape is what the live validation
// endpoints return.
type ErrorField struct {
	Name    string    `json:"field"`
	Message string    `json:"error"`
	Kind    ErrorKind `json:"kind"`
}

// validationError wraps []ErrorField and satisfies the error interface.
//
// It allows callers (HandleSubmit, component handlers) to distinguish user
// input errors from system failures via errors.As / IsValidationError.
type validationError struct{ Fields []ErrorField }

func (ve validationError) Error() string { return "form validation failed" }

// Values is one submitted record keyed by field name.  Text fields hold
// strings and checkboxes hold bools.
type Values map[string]any

// String returns the named value as a string, "" when absent or not a string.
func (vs Values) String(name string) string {
	s, _ := vs[name].(string)
	return s
}

// Bool returns the named value as a bool, false when absent or not a bool.
func (vs Values) Bool(name string) bool {
	b, _ := vs[name].(bool)
	return b
}

// -----------------------------------------------------------------------------
// Public API
// -----------------------------------------------------------------------------

// ValidateField validates one value of field name on formID.  It returns nil
// when the value passes.  The error is non-nil only for unknown forms or
// fields.
func ValidateField(formID, name string, value any) (*ErrorField, error) {
	e, ok := lookup(formID)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownForm, formID)
	}
	r, ok := e.rules[name]
	if !ok {
		return nil, fmt.Errorf("%w %q on form %q", ErrUnknownField, name, formID)
	}
	return r.check(value), nil
}

// ValidateValues validates every field of formID in definition order.  A
// missing value is validated as the zero value for its type.  The returned
// record contains every field, as entered.
func ValidateValues(formID string, vals Values) (Values, []ErrorField) {
	e, ok := lookup(formID)
	if !ok {
		return nil, []ErrorField{{Message: "Unknown form."}}
	}

	var errs []ErrorField
	clean := make(Values, len(e.def.Fields))
	for i := range e.def.Fields {
		f := &e.def.Fields[i]
		val, present := vals[f.Name]
		if !present {
			val = zeroValue(f)
		}
		clean[f.Name] = val

		if ef := e.rules[f.Name].check(val); ef != nil {
			errs = append(errs, *ef)
		}
	}
	return clean, errs
}

// ValidateForm validates posted form data (already parsed into url.Values) for
// formID.  It returns the decoded record and any errors.  A non-empty error
// slice means UI re-render is required; the record is still returned so the
// form can be re-filled.
func ValidateForm(formID string, posted url.Values) (Values, []ErrorField) {
	fd, ok := GetFormDef(formID)
	if !ok {
		return nil, []ErrorField{{Message: "Unknown form."}}
	}
	vals := Decode(fd, posted)

	// Field rules always run so inline errors survive a form-level failure.
	vals, errs := ValidateValues(formID, vals)

	// -------------------------------------------------------------------------
	// Form-level checks: CSRF + render timestamp
	// -------------------------------------------------------------------------
	var msg string
	if !verifyCSRF(posted.Get("csrf_token")) {
		msg = "Security token invalid.  Please refresh and try again."
	} else {
		msg = checkTiming(posted.Get("render_ts"))
	}
	if msg != "" {
		errs = append([]ErrorField{{Message: msg}}, errs...)
	}
	return vals, errs
}

// CarriedRenderTime returns the render timestamp a re-render should reuse:
// the posted one while it is still within MaxAge, else the zero time (the
// renderer then stamps the current time).
func CarriedRenderTime(tsRaw string) time.Time {
	ts, err := strconv.ParseInt(tsRaw, 10, 64)
	if err != nil {
		return time.Time{}
	}
	t := time.UnixMicro(ts)
	if d := time.Since(t); d < 0 || d > current().MaxAge {
		return time.Time{}
	}
	return t
}

// Decode converts posted strings into a typed record.  Checkboxes are true
// when present with a truthy value; everything else is taken verbatim.
func Decode(fd *FormDef, posted url.Values) Values {
	out := make(Values, len(fd.Fields))
	for i := range fd.Fields {
		f := &fd.Fields[i]
		out[f.Name] = DecodeValue(f, posted.Get(f.Name))
	}
	return out
}

// DecodeValue converts one raw string for f.
func DecodeValue(f *FieldDef, raw string) any {
	if f.Type == "checkbox" {
		return truthy(raw)
	}
	return raw
}

// DefaultValues returns the initial record for formID: empty strings, false
// checkboxes, and each field's default.
func DefaultValues(formID string) Values {
	fd, ok := GetFormDef(formID)
	if !ok {
		return nil
	}
	out := make(Values, len(fd.Fields))
	for i := range fd.Fields {
		f := &fd.Fields[i]
		if f.Type == "checkbox" {
			out[f.Name] = truthy(f.Default)
			continue
		}
		out[f.Name] = f.Default
	}
	return out
}

// ByField indexes field errors by name, dropping form-level entries.
func ByField(errs []ErrorField) map[string]ErrorField {
	out := make(map[string]ErrorField, len(errs))
	for _, e := range errs {
		if e.Name != "" {
			out[e.Name] = e
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// Form-level helpers
// -----------------------------------------------------------------------------

func verifyCSRF(token string) bool {
	return token != "" && VerifyToken(token)
}

// checkTiming ensures the form was not submitted suspiciously fast or too late.
// Returns empty string on success, user-visible message on failure.
func checkTiming(tsRaw string) string {
	if tsRaw == "" {
		return "Timestamp missing.  Please reload the page."
	}
	ts, err := strconv.ParseInt(tsRaw, 10, 64)
	if err != nil {
		return "Bad timestamp.  Please retry."
	}
	s := current()
	delta := time.Since(time.UnixMicro(ts))
	switch {
	case delta < s.MinFillTime:
		return "Form submitted too quickly.  Please enter the fields manually."
	case delta > s.MaxAge:
		return "Form expired.  Please reload and submit again."
	default:
		return ""
	}
}

// -----------------------------------------------------------------------------
// Field-level helpers
// -----------------------------------------------------------------------------

func zeroValue(f *FieldDef) any {
	if f.Type == "checkbox" {
		return false
	}
	return ""
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// message picks the user-facing text for a failure.  A field's custom error
// wins; otherwise a default is built from the label.
func message(f *FieldDef, kind ErrorKind, n int) string {
	if f.ErrorMsg != "" {
		return f.ErrorMsg
	}
	switch kind {
	case KindRequired:
		return f.Label + " is required"
	case KindTooShort:
		return fmt.Sprintf("%s must be at least %d characters long", f.Label, n)
	case KindTooLong:
		return fmt.Sprintf("%s must be at most %d characters long", f.Label, n)
	case KindInvalidEnum:
		return fmt.Sprintf("%s must be one of: %s", f.Label, strings.Join(f.Options, ", "))
	case KindMustAccept:
		return f.Label + " must be accepted"
	default:
		return "Invalid " + strings.ToLower(f.Label)
	}
}
