// internal/form/csrf.go
//
// Forms subsystem: stateless CSRF token utilities and runtime settings.
//
// Context
//   Rendered forms embed a hidden `csrf_token` input generated at render time.
//   The server must verify this token on POST to ensure the request originated
//   from a form it rendered.  We implement a *stateless* token:
//
//      base64url( nonce | unixMicro | HMAC_SHA256(secret, nonce+unixMicro) )
//
//   •  nonce – 16 random bytes.  Prevents replay across users.
//   •  unixMicro – microseconds since Unix epoch, 8 bytes, big-endian.
//   •  HMAC – calculated with the configured secret.  Verifies authenticity.
//
//   Validation checks the signature and ensures the timestamp is within
//   maxAge.  No server-side sessions are required, keeping the system cache-
//   friendly and multi-instance safe.
//
// Workflow
//   •  Configure(Settings) → installs key and timing limits at startup.
//   •  GenerateToken()     → returns token string for renderer.
//   •  VerifyToken(tok)    → constant-time verify; false on any failure.
//
//------------------------------------------------------------------------------

package form

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	tokenBytes = 16 + 8 + sha256.Size // nonce + ts + sig
	maxAge     = 2 * time.Hour        // token valid window
)

// Settings are the runtime knobs of the forms subsystem.
type Settings struct {
	CSRFKey     []byte        // ≥ 32 bytes; empty means an ephemeral key
	MinFillTime time.Duration // reject submits faster than this after render
	MaxAge      time.Duration // reject submits older than this after render
}

// DefaultSettings mirrors the config defaults.
var DefaultSettings = Settings{MinFillTime: 2 * time.Second, MaxAge: 30 * time.Minute}

var (
	settings atomic.Pointer[Settings]

	ephemeralOnce sync.Once
	ephemeralKey  []byte
)

// Configure installs s for all subsequent renders and submits.
func Configure(s Settings) {
	settings.Store(&s)
}

// DecodeKey parses a base64url CSRF key as written in config.
func DecodeKey(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return base64.RawURLEncoding.DecodeString(s)
}

func current() Settings {
	if s := settings.Load(); s != nil {
		return *s
	}
	return DefaultSettings
}

// GenerateToken creates a new CSRF token.  Call once per form render.
func GenerateToken() (string, error) {
	sec := fetchSecret()

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(time.Now().UnixMicro()))

	buf := make([]byte, 0, tokenBytes)
	buf = append(buf, nonce...)
	buf = append(buf, ts...)
	buf = append(buf, sign(sec, nonce, ts)...)

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// VerifyToken returns true if tok passes HMAC and age checks.
func VerifyToken(tok string) bool {
	sec := fetchSecret()

	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != tokenBytes {
		return false
	}

	nonce := raw[:16]
	tsBytes := raw[16:24]
	sig := raw[24:]

	// Timestamp window check.
	issued := time.UnixMicro(int64(binary.BigEndian.Uint64(tsBytes)))
	if time.Since(issued) > maxAge || time.Until(issued) > time.Minute {
		// Future timestamp (clock skew) or older than maxAge.
		return false
	}

	return hmac.Equal(sig, sign(sec, nonce, tsBytes))
}

func sign(sec, nonce, ts []byte) []byte {
	mac := hmac.New(sha256.New, sec)
	mac.Write(nonce)
	mac.Write(ts)
	return mac.Sum(nil)
}

// fetchSecret returns the configured key, or a process-wide random key when
// none is set.  The random key resets on restart, invalidating open forms.
func fetchSecret() []byte {
	if k := current().CSRFKey; len(k) > 0 {
		return k
	}
	ephemeralOnce.Do(func() {
		ephemeralKey = make([]byte, 32)
		_, _ = rand.Read(ephemeralKey)
		zap.S().Warnw("form.csrf_key not set, using an ephemeral key")
	})
	return ephemeralKey
}
