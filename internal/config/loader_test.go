package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConf(t *testing.T, body string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "conf"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "conf", "global.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	t.Setenv(rootEnv, root)
	return root
}

func TestLoad_YAMLOverDefaults(t *testing.T) {
	root := writeConf(t, `
http:
  listen_addr: "127.0.0.1:9090"
form:
  min_fill_time: 0s
rate_limit:
  per_minute: 3
`)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.ListenAddr != "127.0.0.1:9090" {
		t.Errorf("listen_addr = %q", cfg.HTTP.ListenAddr)
	}
	if cfg.Form.MinFillTime != 0 {
		t.Errorf("min_fill_time = %v, want 0", cfg.Form.MinFillTime)
	}
	if cfg.Form.MaxAge != 30*time.Minute {
		t.Errorf("max_age default lost: %v", cfg.Form.MaxAge)
	}
	if cfg.RateLimit.PerMinute != 3 {
		t.Errorf("per_minute = %v", cfg.RateLimit.PerMinute)
	}
	if cfg.Theme.Name != "base" {
		t.Errorf("theme default lost: %q", cfg.Theme.Name)
	}
	if cfg.Paths.Root != root {
		t.Errorf("root = %q, want %q", cfg.Paths.Root, root)
	}
	if Get() != cfg {
		t.Errorf("Get did not return the cached config")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	writeConf(t, "http:\n  listen_addr: \":8080\"\n")
	t.Setenv("ASKFORM_HTTP__LISTEN_ADDR", "localhost:7070")
	t.Setenv("ASKFORM_HTTP__DEBUG", "true")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.ListenAddr != "localhost:7070" {
		t.Errorf("listen_addr = %q", cfg.HTTP.ListenAddr)
	}
	if !cfg.HTTP.Debug {
		t.Errorf("debug env override ignored")
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad level":     "log:\n  level: loud\n",
		"short csrf":    "form:\n  csrf_key: abc\n",
		"no listen":     "http:\n  listen_addr: \"\"\n",
		"zero max age":  "form:\n  max_age: 0s\n",
		"negative rate": "rate_limit:\n  per_minute: -1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			writeConf(t, body)
			if _, err := Load(context.Background()); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestParseRef(t *testing.T) {
	path, key, err := parseRef("vault:secret/askform#csrf_key")
	if err != nil {
		t.Fatalf("parseRef: %v", err)
	}
	if path != "secret/askform" || key != "csrf_key" {
		t.Fatalf("got %q %q", path, key)
	}
	for _, bad := range []string{"vault:secret/askform", "vault:#k", "vault:secret#"} {
		if _, _, err := parseRef(bad); err == nil {
			t.Errorf("parseRef(%q) accepted", bad)
		}
	}
}
