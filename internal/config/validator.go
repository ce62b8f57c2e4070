// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `Load` calls `validateStruct` right after it unmarshals the merged Koanf
// tree and resolves secrets.  Any tag mismatch aborts startup, so the
// binary never runs with partial or malformed configuration.
//
// Besides the built-in rules we check that a configured CSRF key decodes to
// at least 32 bytes; a short key would silently weaken every token.

package config

import (
	"encoding/base64"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	val.RegisterStructValidation(formLevel, Form{})
	return val
}

//
// public API
//

// validateStruct returns the validation errors, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}

// formLevel rejects CSRF keys that are set but too short or not base64url.
func formLevel(sl validator.StructLevel) {
	f := sl.Current().Interface().(Form)
	if f.CSRFKey == "" {
		return
	}
	raw, err := base64.RawURLEncoding.DecodeString(f.CSRFKey)
	if err != nil || len(raw) < 32 {
		sl.ReportError(f.CSRFKey, "CSRFKey", "csrf_key", "csrfkey", "")
	}
}
