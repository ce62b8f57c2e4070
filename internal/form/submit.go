// internal/form/submit.go
//
// Forms subsystem: consolidated Submit helper.
//
// Context
//   Most handlers want one call that parses the POST body, validates input,
//   counts the outcome, and returns the record or a validation error.
//   HandleSubmit provides that convenience so component code stays terse.
//   Actions are not run here: the component decides what a successful
//   submit does (by default ExecuteActions), so it runs exactly once.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"net/http"

	"github.com/yanizio/askform/internal/metrics"
)

// HandleSubmit parses r and validates it against formID.  On validation
// failure it returns the decoded record together with a validation error
// (check with IsValidationError, read with Fields).  On unexpected system
// failures it returns a generic error.
func HandleSubmit(formID string, r *http.Request) (Values, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}

	vals, errs := ValidateForm(formID, r.PostForm)
	if len(errs) > 0 {
		countFailure(formID, errs)
		return vals, validationError{Fields: errs}
	}

	metrics.FormSubmissions.WithLabelValues(formID, "accepted").Inc()
	return vals, nil
}

// IsValidationError reports whether err came from failed ValidateForm.
func IsValidationError(err error) bool {
	var ve validationError
	return errors.As(err, &ve)
}

// Fields returns the field errors carried by a validation error, or nil.
func Fields(err error) []ErrorField {
	var ve validationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

// countFailure records a rejected submit.  Form-level failures (no field
// name) count as “forbidden”.
func countFailure(formID string, errs []ErrorField) {
	result := "rejected"
	for _, e := range errs {
		if e.Name == "" {
			result = "forbidden"
			continue
		}
		metrics.FieldErrors.WithLabelValues(formID, e.Name, string(e.Kind)).Inc()
	}
	metrics.FormSubmissions.WithLabelValues(formID, result).Inc()
}
