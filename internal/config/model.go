// internal/config/model.go
//
// Typed configuration model for askform.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                           – dotenv values,
//   • `conf/global.yaml`                        – primary static file,
//   • `ASKFORM_`-prefixed environment overrides – highest precedence.
//
// Any string value that begins with `vault:` is resolved through the Vault
// client after unmarshalling and before validation, so the rest of the
// program never sees Vault references.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • Durations are written as Go duration strings ("2s", "30m").
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr   string        `koanf:"listen_addr"   validate:"required,hostname_port"`
	ForceHTTPS   bool          `koanf:"force_https"`
	Debug        bool          `koanf:"debug"` // mounts /debug
	ReadTimeout  time.Duration `koanf:"read_timeout"  validate:"gte=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gte=0"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"  validate:"gte=0"`
}

//
// Logging section
//

// Log controls the zap logger.  Tee selects whether the console core is
// attached: "auto" attaches it only when stdout is a TTY.
type Log struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	Tee   string `koanf:"tee"   validate:"oneof=auto always never"`
}

//
// Form section
//

// Form holds the anti-forgery and timing knobs of the forms subsystem.
//
// CSRFKey is a base64url string of at least 32 bytes, or a `vault:` ref.
// When empty, an ephemeral key is generated at startup.
type Form struct {
	CSRFKey     string        `koanf:"csrf_key"`
	MinFillTime time.Duration `koanf:"min_fill_time" validate:"gte=0"`
	MaxAge      time.Duration `koanf:"max_age"       validate:"gt=0"`
	OverrideDir string        `koanf:"override_dir"` // optional on-disk YAML overrides
}

//
// Rate-limit section
//

// RateLimit caps form submissions per client IP.  Zero disables the limiter.
type RateLimit struct {
	PerMinute float64 `koanf:"per_minute" validate:"gte=0"`
}

//
// Geo section
//

// Geo points at an optional MaxMind GeoLite2-City database.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Theme section
//

// Theme selects the embedded theme directory.
type Theme struct {
	Name string `koanf:"name" validate:"required"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // ASKFORM_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads.
type Config struct {
	HTTP      HTTP      `koanf:"http"`
	Log       Log       `koanf:"log"`
	Form      Form      `koanf:"form"`
	RateLimit RateLimit `koanf:"rate_limit"`
	Geo       Geo       `koanf:"geo"`
	Theme     Theme     `koanf:"theme"`
	Paths     Paths     `koanf:"-"`
}

// Defaults returns the baseline that YAML and env layers are merged onto.
// Koanf only overwrites keys that are present, so anything omitted from
// conf/global.yaml keeps these values.
func Defaults() Config {
	return Config{
		HTTP: HTTP{
			ListenAddr:   ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Log:       Log{Level: "info", Tee: "auto"},
		Form:      Form{MinFillTime: 2 * time.Second, MaxAge: 30 * time.Minute},
		RateLimit: RateLimit{PerMinute: 10},
		Theme:     Theme{Name: "base"},
	}
}
