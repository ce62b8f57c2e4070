package contact

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"

	"github.com/yanizio/askform/internal/form"
	"github.com/yanizio/askform/internal/theme"
	"github.com/yanizio/askform/internal/view"
	"github.com/yanizio/askform/web"
)

var testSettings = form.Settings{MinFillTime: 0, MaxAge: 30 * time.Minute}

func TestMain(m *testing.M) {
	form.Configure(testSettings)

	mgr := theme.Manager{FS: web.FS}
	th, err := mgr.Load("base", view.FuncMap(nil))
	if err != nil {
		panic(err)
	}
	view.UseTheme(th)
	os.Exit(m.Run())
}

var (
	csrfRE = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)
	tsRE   = regexp.MustCompile(`name="render_ts" value="(\d+)"`)
)

// newServer mounts c and returns a client that does not follow redirects.
func newServer(t *testing.T, c *Component) (*httptest.Server, *http.Client) {
	t.Helper()
	srv := httptest.NewServer(c.Routes())
	t.Cleanup(srv.Close)
	cl := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	return srv, cl
}

func get(t *testing.T, cl *http.Client, u string, cookies ...*http.Cookie) (int, string, *http.Response) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, u, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	res, err := cl.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", u, err)
	}
	defer res.Body.Close()
	var sb strings.Builder
	if _, err := io.Copy(&sb, res.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res.StatusCode, sb.String(), res
}

// guards scrapes the hidden inputs a rendered page carries.
func guards(t *testing.T, page string) url.Values {
	t.Helper()
	tok := csrfRE.FindStringSubmatch(page)
	ts := tsRE.FindStringSubmatch(page)
	if tok == nil || ts == nil {
		t.Fatalf("page lacks hidden inputs:\n%s", page)
	}
	return url.Values{"csrf_token": {tok[1]}, "render_ts": {ts[1]}}
}

// submitForm posts vals and returns the response with its body read.
func submitForm(t *testing.T, cl *http.Client, u string, vals url.Values) (*http.Response, string) {
	t.Helper()
	res, err := cl.PostForm(u, vals)
	if err != nil {
		t.Fatalf("POST %s: %v", u, err)
	}
	defer res.Body.Close()
	var sb strings.Builder
	if _, err := io.Copy(&sb, res.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, sb.String()
}

func TestPage_Defaults(t *testing.T) {
	srv, cl := newServer(t, New())

	code, body, res := get(t, cl, srv.URL+"/")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	for _, want := range []string{
		"<title>Ask Your Question</title>",
		`id="fld-firstName"`,
		`value="frontend" checked`,
		`Type your message here...`,
		`<button type="submit" class="form-submit">Submit</button>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page lacks %q", want)
		}
	}
	if strings.Contains(body, "has-error") {
		t.Errorf("blank page shows errors")
	}
	if strings.Contains(body, `class="toast`) {
		t.Errorf("blank page shows a toast")
	}
}

func TestSubmit_AcceptedResetsAndToasts(t *testing.T) {
	var got []FormState
	c := New()
	c.OnSubmit = func(_ form.ActionCtx, s FormState) { got = append(got, s) }
	srv, cl := newServer(t, c)

	_, page, _ := get(t, cl, srv.URL+"/")
	post := guards(t, page)
	post.Set("firstName", "Ada")
	post.Set("lastName", "Lovelace")
	post.Set("email", "ada@example.com")
	post.Set("topic", "backend")
	post.Set("message", "I have a question about backend topics.")
	post.Set("terms", "true")

	res, err := cl.PostForm(srv.URL+"/", post)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusSeeOther || res.Header.Get("Location") != "/" {
		t.Fatalf("got %d → %q", res.StatusCode, res.Header.Get("Location"))
	}

	want := []FormState{{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Topic:     TopicBackend,
		Message:   "I have a question about backend topics.",
		Terms:     true,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("OnSubmit records (-want +got):\n%s", diff)
	}

	// The custom OnSubmit queued no toast; the default one does.
	if len(res.Cookies()) != 0 {
		t.Errorf("unexpected cookies %v", res.Cookies())
	}
}

func TestSubmit_DefaultActionsQueueToast(t *testing.T) {
	srv, cl := newServer(t, New())

	_, page, _ := get(t, cl, srv.URL+"/")
	post := guards(t, page)
	post.Set("firstName", "Grace")
	post.Set("lastName", "Hopper")
	post.Set("email", "grace@navy.mil")
	post.Set("topic", "frontend")
	post.Set("message", "Where did the moth go?")
	post.Set("terms", "on")

	res, err := cl.PostForm(srv.URL+"/", post)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d", res.StatusCode)
	}
	var toast *http.Cookie
	for _, ck := range res.Cookies() {
		if ck.Name == "askform_toast" {
			toast = ck
		}
	}
	if toast == nil {
		t.Fatalf("no toast cookie")
	}

	_, body, _ := get(t, cl, srv.URL+"/", toast)
	if !strings.Contains(body, "Form submitted successfully!") {
		t.Fatalf("toast not shown")
	}
	if !strings.Contains(body, "toast-top-center") || !strings.Contains(body, `data-duration="4000"`) {
		t.Errorf("toast placement or duration wrong")
	}
	// Reset: the next page is the blank default form.
	if strings.Contains(body, "Grace") || strings.Contains(body, "has-error") {
		t.Errorf("form not reset after submit")
	}
}

func TestSubmit_RejectedKeepsInputAndShowsErrors(t *testing.T) {
	calls := 0
	c := New()
	c.OnSubmit = func(form.ActionCtx, FormState) { calls++ }
	srv, cl := newServer(t, c)

	_, page, _ := get(t, cl, srv.URL+"/")
	post := guards(t, page)
	post.Set("topic", "frontend")
	post.Set("email", "a@b")
	post.Set("message", "short")

	res, err := cl.PostForm(srv.URL+"/", post)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer res.Body.Close()
	var sb strings.Builder
	_, _ = io.Copy(&sb, res.Body)
	body := sb.String()

	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if calls != 0 {
		t.Fatalf("OnSubmit ran on invalid input")
	}
	for _, msg := range []string{
		"First name is required",
		"Last name is required",
		"Invalid email address",
		"Message must be at least 10 characters long",
		"You must accept the terms and conditions",
	} {
		if !strings.Contains(body, msg) {
			t.Errorf("missing %q", msg)
		}
	}
	if n := strings.Count(body, "has-error"); n != 5 {
		t.Errorf("has-error count = %d, want 5", n)
	}
	if !strings.Contains(body, `value="a@b"`) || !strings.Contains(body, ">short</textarea>") {
		t.Errorf("entered values not kept")
	}
}

func TestSubmit_MissingToken(t *testing.T) {
	calls := 0
	c := New()
	c.OnSubmit = func(form.ActionCtx, FormState) { calls++ }
	srv, cl := newServer(t, c)

	res, err := cl.PostForm(srv.URL+"/", url.Values{"firstName": {"Ada"}})
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusUnprocessableEntity || calls != 0 {
		t.Fatalf("status = %d, calls = %d", res.StatusCode, calls)
	}
}

func TestValidateEndpoint(t *testing.T) {
	srv, cl := newServer(t, New())

	cases := []struct {
		field, value string
		status       int
		want         form.ErrorField
	}{
		{"email", "a@b", 200, form.ErrorField{Name: "email", Message: "Invalid email address", Kind: form.KindInvalidFormat}},
		{"email", "a@b.com", 200, form.ErrorField{Name: "email"}},
		{"message", "   123456789   ", 200, form.ErrorField{Name: "message", Message: "Message must be at least 10 characters long", Kind: form.KindTooShort}},
		{"terms", "", 200, form.ErrorField{Name: "terms", Message: "You must accept the terms and conditions", Kind: form.KindMustAccept}},
		{"terms", "true", 200, form.ErrorField{Name: "terms"}},
		{"topic", "design", 200, form.ErrorField{Name: "topic", Message: "What would you like to talk about? must be one of: frontend, backend", Kind: form.KindInvalidEnum}},
		{"nickname", "x", 400, form.ErrorField{Name: "nickname", Message: "unknown field"}},
	}
	for _, tc := range cases {
		res, err := cl.PostForm(srv.URL+"/validate", url.Values{"field": {tc.field}, "value": {tc.value}})
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		var got form.ErrorField
		err = json.NewDecoder(res.Body).Decode(&got)
		res.Body.Close()
		if err != nil {
			t.Fatalf("%s=%q: decode: %v", tc.field, tc.value, err)
		}
		if res.StatusCode != tc.status {
			t.Errorf("%s=%q: status = %d", tc.field, tc.value, res.StatusCode)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("%s=%q (-want +got):\n%s", tc.field, tc.value, diff)
		}
	}
}

func TestLiveSocket(t *testing.T) {
	srv, _ := newServer(t, New())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/live", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	frames := []struct {
		in   liveFrame
		want form.ErrorField
	}{
		{liveFrame{"firstName", "  "}, form.ErrorField{Name: "firstName", Message: "First name is required", Kind: form.KindRequired}},
		{liveFrame{"firstName", "Ada"}, form.ErrorField{Name: "firstName"}},
		{liveFrame{"terms", false}, form.ErrorField{Name: "terms", Message: "You must accept the terms and conditions", Kind: form.KindMustAccept}},
		{liveFrame{"terms", true}, form.ErrorField{Name: "terms"}},
		{liveFrame{"terms", "yes"}, form.ErrorField{Name: "terms", Message: "You must accept the terms and conditions", Kind: form.KindInvalidFormat}},
		{liveFrame{"bogus", "x"}, form.ErrorField{Name: "bogus", Message: "unknown field"}},
	}
	for _, f := range frames {
		if err := wsjson.Write(ctx, conn, f.in); err != nil {
			t.Fatalf("write: %v", err)
		}
		var got form.ErrorField
		if err := wsjson.Read(ctx, conn, &got); err != nil {
			t.Fatalf("read: %v", err)
		}
		if diff := cmp.Diff(f.want, got); diff != "" {
			t.Errorf("%+v (-want +got):\n%s", f.in, diff)
		}
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

func TestSubmit_QuickFixAfterRejectIsAccepted(t *testing.T) {
	form.Configure(form.Settings{MinFillTime: 2 * time.Second, MaxAge: 30 * time.Minute})
	t.Cleanup(func() { form.Configure(testSettings) })

	calls := 0
	c := New()
	c.OnSubmit = func(form.ActionCtx, FormState) { calls++ }
	srv, cl := newServer(t, c)

	// The user spent three seconds on the form but forgot the terms box.
	_, page, _ := get(t, cl, srv.URL+"/")
	vals := guards(t, page)
	started := strconv.FormatInt(time.Now().Add(-3*time.Second).UnixMicro(), 10)
	vals.Set("render_ts", started)
	vals.Set("firstName", "Ada")
	vals.Set("lastName", "Lovelace")
	vals.Set("email", "ada@example.com")
	vals.Set("topic", "backend")
	vals.Set("message", "I have a question about backend topics.")

	res, body := submitForm(t, cl, srv.URL+"/", vals)
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if n := strings.Count(body, "has-error"); n != 1 || !strings.Contains(body, "You must accept the terms and conditions") {
		t.Fatalf("want only the terms error, has-error count = %d", n)
	}

	// Ticking the box and resubmitting at once must not read as "too fast".
	again := guards(t, body)
	if again.Get("render_ts") != started {
		t.Fatalf("render_ts = %s, want the first render's %s", again.Get("render_ts"), started)
	}
	for k := range vals {
		if k != "csrf_token" && k != "render_ts" {
			again.Set(k, vals.Get(k))
		}
	}
	again.Set("terms", "true")

	res, body = submitForm(t, cl, srv.URL+"/", again)
	if res.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d:\n%s", res.StatusCode, body)
	}
	if calls != 1 {
		t.Fatalf("OnSubmit calls = %d, want 1", calls)
	}
}

func TestSubmit_GuardFailureKeepsFieldErrors(t *testing.T) {
	srv, cl := newServer(t, New())

	res, body := submitForm(t, cl, srv.URL+"/", url.Values{
		"csrf_token": {"forged"},
		"render_ts":  {strconv.FormatInt(time.Now().Add(-time.Minute).UnixMicro(), 10)},
		"topic":      {"frontend"},
		"email":      {"a@b"},
	})
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if !strings.Contains(body, "Security token invalid.") {
		t.Errorf("banner missing")
	}
	if n := strings.Count(body, "has-error"); n != 5 {
		t.Errorf("has-error count = %d, want 5", n)
	}
}

func TestRoutes_MountedUnderPrefix(t *testing.T) {
	c := New()
	c.Prefix = "/ask"
	r := chi.NewRouter()
	r.Mount("/ask", c.Routes())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	cl := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}

	code, page, _ := get(t, cl, srv.URL+"/ask/")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	for _, want := range []string{`action="/ask/"`, `data-validate="/ask/validate"`, `data-live="/ask/live"`} {
		if !strings.Contains(page, want) {
			t.Errorf("page lacks %q", want)
		}
	}

	vals := guards(t, page)
	vals.Set("firstName", "Ada")
	vals.Set("lastName", "Lovelace")
	vals.Set("email", "ada@example.com")
	vals.Set("topic", "frontend")
	vals.Set("message", "Does this work under a prefix?")
	vals.Set("terms", "true")
	res, _ := submitForm(t, cl, srv.URL+"/ask/", vals)
	if res.StatusCode != http.StatusSeeOther || res.Header.Get("Location") != "/ask/" {
		t.Fatalf("got %d → %q", res.StatusCode, res.Header.Get("Location"))
	}

	res, _ = submitForm(t, cl, srv.URL+"/ask/validate", url.Values{"field": {"email"}, "value": {"a@b.com"}})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("validate status = %d", res.StatusCode)
	}
}
