// internal/form/rules.go
//
// Forms subsystem: FieldDef → validator tag compiler.
//
// Context
//   Every FieldDef is compiled once, at registration, into a go-playground
//   validator tag string plus an optional pattern.  The same rule serves the
//   single-field check used while the user edits and the full-record check
//   used on submit, so the two can never disagree.
//
//   Custom tags registered on the package validator:
//
//     filled          non-empty after trimming whitespace
//     trimmed_min=N   at least N runes after trimming
//     trimmed_max=N   at most N runes after trimming
//     email_address   local-part@domain with a dotted domain, no spaces
//     accepted        boolean true
//
//   Each failing tag maps to one ErrorKind (see kindByTag).
//
//------------------------------------------------------------------------------

package form

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// emailRE accepts dot-separated atoms before the “@” and at least one dot in
// the domain, ending in an alphabetic TLD of two or more letters.
var emailRE = regexp.MustCompile(
	`^[A-Za-z0-9_'+\-]+(\.[A-Za-z0-9_'+\-]+)*@([A-Za-z0-9][A-Za-z0-9\-]*\.)+[A-Za-z]{2,}$`)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	must := func(tag string, fn validator.Func) {
		if err := val.RegisterValidation(tag, fn); err != nil {
			panic("form: register " + tag + ": " + err.Error())
		}
	}
	must("filled", filled)
	must("trimmed_min", trimmedMin)
	must("trimmed_max", trimmedMax)
	must("email_address", emailAddress)
	must("accepted", accepted)
	return val
}

// -----------------------------------------------------------------------------
// Custom validator funcs
// -----------------------------------------------------------------------------

func filled(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func trimmedMin(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return trimmedLen(fl.Field().String()) >= n
}

func trimmedMax(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return trimmedLen(fl.Field().String()) <= n
}

func emailAddress(fl validator.FieldLevel) bool {
	return emailRE.MatchString(fl.Field().String())
}

func accepted(fl validator.FieldLevel) bool {
	f := fl.Field()
	return f.Kind() == reflect.Bool && f.Bool()
}

func trimmedLen(s string) int { return utf8.RuneCountInString(strings.TrimSpace(s)) }

// -----------------------------------------------------------------------------
// Compiled rules
// -----------------------------------------------------------------------------

// fieldRule is the compiled form of one FieldDef.
type fieldRule struct {
	def     *FieldDef
	tag     string         // validator tag list, "" when unconstrained
	pattern *regexp.Regexp // checked after tag
}

var kindByTag = map[string]ErrorKind{
	"filled":        KindRequired,
	"email_address": KindInvalidFormat,
	"oneof":         KindInvalidEnum,
	"trimmed_min":   KindTooShort,
	"trimmed_max":   KindTooLong,
	"accepted":      KindMustAccept,
}

// compileRule turns f into a tag list.  Order matters: validator reports the
// first failing tag, so emptiness is checked before length or format.
func compileRule(f *FieldDef) *fieldRule {
	r := &fieldRule{def: f}
	if f.Pattern != "" {
		r.pattern = regexp.MustCompile(f.Pattern) // pre-validated at load
	}

	var tags []string
	switch f.Type {
	case "checkbox":
		if f.Required {
			tags = append(tags, "accepted")
		}

	case "radio", "select":
		if !f.Required {
			tags = append(tags, "omitempty")
		}
		tags = append(tags, "oneof="+strings.Join(f.Options, " "))

	default: // text, email, textarea
		if !f.Required {
			tags = append(tags, "omitempty")
		}
		// An empty address fails the email grammar, so email fields report
		// InvalidFormat rather than Required when left blank.
		if f.Required && f.MinLength == 0 && f.Type != "email" {
			tags = append(tags, "filled")
		}
		if f.MinLength > 0 {
			tags = append(tags, "trimmed_min="+strconv.Itoa(f.MinLength))
		}
		if f.MaxLength > 0 {
			tags = append(tags, "trimmed_max="+strconv.Itoa(f.MaxLength))
		}
		if f.Type == "email" {
			tags = append(tags, "email_address")
		}
	}

	r.tag = strings.Join(tags, ",")
	return r
}

// check validates one value.  It returns nil when the value passes.
func (r *fieldRule) check(value any) *ErrorField {
	f := r.def

	// Wrong Go type: the value cannot have come from our own markup.
	switch f.Type {
	case "checkbox":
		if _, ok := value.(bool); !ok {
			return r.fail(KindInvalidFormat, 0)
		}
	case "radio", "select":
		if _, ok := value.(string); !ok {
			return r.fail(KindInvalidEnum, 0)
		}
	default:
		if _, ok := value.(string); !ok {
			return r.fail(KindInvalidFormat, 0)
		}
	}

	if r.tag != "" {
		if err := v.Var(value, r.tag); err != nil {
			if ves, ok := err.(validator.ValidationErrors); ok && len(ves) > 0 {
				kind, known := kindByTag[ves[0].Tag()]
				if !known {
					kind = KindInvalidFormat
				}
				n, _ := strconv.Atoi(ves[0].Param())
				return r.fail(kind, n)
			}
			return r.fail(KindInvalidFormat, 0)
		}
	}

	if r.pattern != nil {
		if s, _ := value.(string); s != "" && !r.pattern.MatchString(s) {
			return r.fail(KindInvalidFormat, 0)
		}
	}
	return nil
}

func (r *fieldRule) fail(kind ErrorKind, n int) *ErrorField {
	return &ErrorField{Name: r.def.Name, Message: message(r.def, kind, n), Kind: kind}
}
