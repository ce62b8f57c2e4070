package view

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/yanizio/askform/internal/core"
	"github.com/yanizio/askform/internal/notify"
	"github.com/yanizio/askform/internal/theme"
	"github.com/yanizio/askform/internal/widget"
)

type stubWidget struct{}

func (stubWidget) ID() string { return "stub" }
func (stubWidget) Render(_ any, p map[string]any) (string, int, error) {
	if p["fail"] == true {
		return "", int(CacheSkip), errors.New("boom")
	}
	return "<em>" + p["who"].(string) + "</em>", int(CacheSkip), nil
}

func setup(t *testing.T) {
	t.Helper()
	themeFS := fstest.MapFS{
		"themes/test/templates/layout.html": {Data: []byte(
			`{{ define "layout" }}{{ .Head.Title }}<link href="{{ asset "a.css" }}">` +
				`{{ block "content" . }}none{{ end }}{{ with .Toast }}[{{ .Text }}]{{ end }}{{ end }}`)},
		"themes/test/components/over/templates/page.html": {Data: []byte(
			`{{ define "page" }}{{ template "layout" . }}{{ end }}{{ define "content" }}themed{{ end }}`)},
	}
	compFS := fstest.MapFS{
		"templates/page.html": {Data: []byte(
			`{{ define "page" }}{{ template "layout" . }}{{ end }}` +
				`{{ define "content" }}hello {{ widget "stub" (dict "who" .Who "fail" .Fail) }}{{ end }}`)},
	}

	mgr := theme.Manager{FS: themeFS}
	th, err := mgr.Load("test", FuncMap(nil))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	UseTheme(th)
	RegisterComponent("comp", compFS)
	RegisterComponent("over", compFS)
	widget.Register(stubWidget{})
}

func TestRender_ComponentTemplate(t *testing.T) {
	setup(t)

	rec := httptest.NewRecorder()
	ctx := core.New(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	ctx.Head.SetTitle("T")
	ctx.Toast = &notify.Toast{Text: "done"}

	err := Render(ctx, rec, http.StatusUnprocessableEntity, "comp", "page", Data(ctx, "Who", "Ada", "Fail", false), CacheDefault)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"<title>T</title>", `href="/assets/a.css"`, "hello <em>Ada</em>", "[done]"} {
		if !strings.Contains(body, want) {
			t.Errorf("body lacks %q: %s", want, body)
		}
	}

	// Second render comes from the cache and still binds fresh helpers.
	rec = httptest.NewRecorder()
	ctx = core.New(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if err := Render(ctx, rec, http.StatusOK, "comp", "page", Data(ctx, "Who", "Bob", "Fail", false), CacheDefault); err != nil {
		t.Fatalf("cached Render: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "<em>Bob</em>") || strings.Contains(rec.Body.String(), "[") {
		t.Errorf("cached body = %s", rec.Body.String())
	}
}

func TestRender_ThemeOverride(t *testing.T) {
	setup(t)

	rec := httptest.NewRecorder()
	ctx := core.New(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if err := Render(ctx, rec, http.StatusOK, "over", "page", Data(ctx), CacheSkip); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "themed") {
		t.Errorf("theme override ignored: %s", rec.Body.String())
	}
}

func TestRender_ErrorsWriteNothing(t *testing.T) {
	setup(t)

	rec := httptest.NewRecorder()
	ctx := core.New(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if err := Render(ctx, rec, http.StatusOK, "comp", "page", Data(ctx, "Who", "x", "Fail", true), CacheDefault); err == nil {
		t.Fatalf("widget failure swallowed")
	}
	if rec.Body.Len() != 0 {
		t.Errorf("partial page written: %q", rec.Body.String())
	}

	if err := Render(ctx, rec, http.StatusOK, "comp", "missing", nil, CacheDefault); err == nil {
		t.Fatalf("missing template rendered")
	}
}

func TestDict(t *testing.T) {
	m := dict("a", 1, "b", "x", "dangling")
	if len(m) != 2 || m["a"] != 1 || m["b"] != "x" {
		t.Fatalf("dict = %v", m)
	}
}
