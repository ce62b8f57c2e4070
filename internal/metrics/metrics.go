// Package metrics holds Prometheus instruments that are used across
// askform.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	FormSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_submissions_total",
			Help: "Form submissions by form id and result (accepted, rejected, forbidden).",
		}, []string{"form", "result"})

	FieldErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_field_errors_total",
			Help: "Field validation failures by form, field, and error kind.",
		}, []string{"form", "field", "kind"})

	LiveValidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_live_validations_total",
			Help: "Single-field validations requested while editing, by transport (http, ws, cli).",
		}, []string{"form", "transport"})

	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "form_rate_limited_total",
			Help: "Submissions rejected by the per-IP rate limiter.",
		})
)

func init() {
	prometheus.MustRegister(
		FormSubmissions,
		FieldErrors,
		LiveValidations,
		RateLimited,
	)
}
