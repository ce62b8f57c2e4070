// components/contact/state.go
//
// Typed view of the “Ask Your Question” record.
//
// Context
// -------
// The rules live once, in forms/ask.yaml, and are enforced by the form
// engine.  FormState is the typed record handlers and the CLI work with;
// Values and FromValues convert to and from the engine's generic record.
//
// Notes
// -----
// • Validate never rewrites the record.  Predicates trim before measuring,
//   but the state handed to OnSubmit is exactly what the user entered.
// • Oxford commas, two spaces after periods.

package contact

import (
	"github.com/yanizio/askform/internal/form"
)

// FormID is the registered form definition.
const FormID = "contact/ask"

// Topic is the subject area of a question.
type Topic string

const (
	TopicFrontend Topic = "frontend"
	TopicBackend  Topic = "backend"
)

// FormState is one “Ask Your Question” record.
type FormState struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Topic     Topic  `json:"topic"`
	Message   string `json:"message"`
	Terms     bool   `json:"terms"`
}

// FieldErrors maps field name to its failure.  Empty means the record is
// submittable.
type FieldErrors map[string]form.ErrorField

// DefaultState is the record shown on first display: empty strings,
// topic frontend, and terms unchecked.
func DefaultState() FormState {
	return FormState{Topic: TopicFrontend}
}

// Values converts s to the form engine's record.
func (s FormState) Values() form.Values {
	return form.Values{
		"firstName": s.FirstName,
		"lastName":  s.LastName,
		"email":     s.Email,
		"topic":     string(s.Topic),
		"message":   s.Message,
		"terms":     s.Terms,
	}
}

// FromValues converts an engine record back to FormState.  Values of the
// wrong type become zero values; validate first.
func FromValues(v form.Values) FormState {
	return FormState{
		FirstName: v.String("firstName"),
		LastName:  v.String("lastName"),
		Email:     v.String("email"),
		Topic:     Topic(v.String("topic")),
		Message:   v.String("message"),
		Terms:     v.Bool("terms"),
	}
}

// Validate checks every field of s and returns s unchanged together with
// all failures.
func Validate(s FormState) (FormState, FieldErrors) {
	_, errs := form.ValidateValues(FormID, s.Values())
	return s, FieldErrors(form.ByField(errs))
}

// ValidateField checks one field.  value is a string for text fields and the
// topic, or a bool for terms.  It returns nil when the value passes.
func ValidateField(name string, value any) (*form.ErrorField, error) {
	return form.ValidateField(FormID, name, value)
}
