// internal/middleware/ratelimit.go
//
// Per-client-IP rate limit for form submissions (tollbooth).
//
// perMinute is the sustained rate; the same number is allowed as an
// immediate burst, so a user correcting a few validation errors in a row is
// never throttled.  Limited requests get 429 with a short plain-text body
// and are counted in metrics.RateLimited.  Zero disables the limiter.
//
// Clients are keyed on RemoteAddr only.  Forwarding headers are client
// controlled; behind a proxy, chi's RealIP (installed in serve) rewrites
// RemoteAddr before this runs.

package middleware

import (
	"net/http"
	"time"

	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"

	"github.com/yanizio/askform/internal/logger"
	"github.com/yanizio/askform/internal/metrics"
)

// RateLimit returns a wrapper allowing perMinute requests per client IP.
func RateLimit(perMinute float64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if perMinute <= 0 {
			return next
		}

		lmt := tollbooth.NewLimiter(perMinute/60.0, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour})
		lmt.SetIPLookups([]string{"RemoteAddr"})
		burst := int(perMinute)
		if burst < 1 {
			burst = 1
		}
		lmt.SetBurst(burst)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if httpErr := tollbooth.LimitByRequest(lmt, w, r); httpErr != nil {
				metrics.RateLimited.Inc()
				logger.FromContext(r.Context()).Infow("submission rate limited", "remote", r.RemoteAddr)
				http.Error(w, "Too many submissions.  Please wait a minute and try again.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
