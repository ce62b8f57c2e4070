// internal/notify/notify.go
//
// Transient notifications (toasts).
//
// Context
//   A successful submit answers with 303 See Other so a browser refresh
//   never re-posts.  The toast that should greet the user on the next GET
//   rides across that hop in a short-lived cookie named “askform_toast”.
//   Take reads and clears it in one step, so a toast is shown exactly once.
//   The page script removes the element after Duration.
//
//   The cookie holds base64url(JSON) and is not signed: a forged value only
//   changes the text a client shows itself, and templates escape it.
//
// Style
//   Two-space sentence spacing, Oxford comma, terse inline notes.
//
//------------------------------------------------------------------------------

package notify

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"
)

const (
	cookieName = "askform_toast"
	cookieTTL  = 60 // seconds; long enough for one redirect
)

// Toast is one transient message.
type Toast struct {
	Kind     string        `json:"kind"`     // success, error, info
	Text     string        `json:"text"`     // user-facing message
	Position string        `json:"position"` // e.g. top-center
	Duration time.Duration `json:"duration"` // auto-dismiss delay
}

// Defaults fills empty fields with the house style.
func (t Toast) Defaults() Toast {
	if t.Kind == "" {
		t.Kind = "success"
	}
	if t.Position == "" {
		t.Position = "top-center"
	}
	if t.Duration <= 0 {
		t.Duration = 4 * time.Second
	}
	return t
}

// Millis returns Duration in milliseconds for the page script.
func (t Toast) Millis() int64 { return t.Duration.Milliseconds() }

// Set queues t for the next page view.
func Set(w http.ResponseWriter, r *http.Request, t Toast) error {
	raw, err := json.Marshal(t.Defaults())
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   cookieTTL,
		HttpOnly: true,
		Secure:   r.TLS != nil, // only send over HTTPS
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Take returns the queued toast, if any, and clears the cookie.
//
// ok == false when the cookie is missing or unreadable.
func Take(w http.ResponseWriter, r *http.Request) (Toast, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return Toast{}, false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return Toast{}, false
	}
	var t Toast
	if err := json.Unmarshal(raw, &t); err != nil || t.Text == "" {
		return Toast{}, false
	}
	return t.Defaults(), true
}
