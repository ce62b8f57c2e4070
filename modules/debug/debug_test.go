package debug

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/yanizio/askform/internal/config"
	"github.com/yanizio/askform/internal/module"
	"github.com/yanizio/askform/internal/requestinfo"
)

func loadConfig(t *testing.T, debug bool) {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "conf"), 0o755); err != nil {
		t.Fatal(err)
	}
	body := "http:\n  debug: false\n"
	if debug {
		body = "http:\n  debug: true\n"
	}
	if err := os.WriteFile(filepath.Join(root, "conf", "global.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ASKFORM_ROOT", root)
	if _, err := config.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func serve() *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/debug?x=1", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
	rec := httptest.NewRecorder()
	requestinfo.Enrich(module.HTTP("/debug")).ServeHTTP(rec, req)
	return rec
}

func TestDebug_HiddenByDefault(t *testing.T) {
	loadConfig(t, false)
	if rec := serve(); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDebug_Enabled(t *testing.T) {
	loadConfig(t, true)

	rec := serve()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var out struct {
		Path  string `json:"path"`
		Query string `json:"query"`
		Info  struct {
			UA struct {
				IsBot bool `json:"is_bot"`
			} `json:"ua"`
		} `json:"info"`
		Label string `json:"ua_label"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Path != "/debug" || out.Query != "x=1" || !out.Info.UA.IsBot || out.Label == "" {
		t.Fatalf("out = %+v", out)
	}
}
