package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"bazaar/internal/api"
	"bazaar/internal/api/apitest"
	"bazaar/internal/domain"
	"bazaar/internal/http/handlers"
	applog "bazaar/internal/log"
	"bazaar/internal/poll"
	"bazaar/internal/repos"
)

const password = "Secret123"

// testLimits keep the global budget out of the way of ordinary tests.
var testLimits = handlers.Limits{Global: 1000, Login: 100, Search: 100, Availability: 100}

type env struct {
	be   *apitest.Backend
	deps *handlers.Deps
	app  *fiber.App
}

func newEnv(t *testing.T, lim handlers.Limits) *env {
	t.Helper()
	be := apitest.New()
	t.Cleanup(be.Close)

	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	hub := poll.NewHub(context.Background())
	t.Cleanup(hub.CloseAll)
	deps := handlers.NewDeps(api.New(be.URL(), 5*time.Second), repos.NewSessionRepo(db), hub, handlers.Options{PollInterval: time.Hour})
	return &env{be: be, deps: deps, app: handlers.NewApp(deps, lim)}
}

// browser keeps cookies between requests the way a real one would.
type browser struct {
	t    *testing.T
	app  *fiber.App
	jar  map[string]string
	last *http.Response
}

func (e *env) browser(t *testing.T) *browser {
	return &browser{t: t, app: e.app, jar: map[string]string{}}
}

func (b *browser) do(req *http.Request) *http.Response {
	b.t.Helper()
	for k, v := range b.jar {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}
	resp, err := b.app.Test(req, 5000)
	if err != nil {
		b.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	for _, c := range resp.Cookies() {
		if c.Value == "" || c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(time.Now())) {
			delete(b.jar, c.Name)
			continue
		}
		b.jar[c.Name] = c.Value
	}
	b.last = resp
	return resp
}

func (b *browser) get(path string) *http.Response {
	b.t.Helper()
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// post submits a form with the page's CSRF token, fetching one first when
// the jar has none.
func (b *browser) post(path string, form url.Values) *http.Response {
	b.t.Helper()
	if b.jar["csrf_"] == "" {
		b.get("/login")
	}
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf", b.jar["csrf_"])
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) login(email string) {
	b.t.Helper()
	resp := b.post("/login", url.Values{"email": {email}, "password": {password}})
	if resp.StatusCode != http.StatusFound {
		b.t.Fatalf("login %s: status %d: %s", email, resp.StatusCode, body(b.t, resp))
	}
	if b.jar["sid"] == "" {
		b.t.Fatal("sid cookie missing after login")
	}
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func location(resp *http.Response) string { return resp.Header.Get("Location") }

func (e *env) user(id, role string) domain.User {
	u := domain.User{ID: id, Name: strings.ToUpper(id[:1]) + id[1:], Email: id + "@bazaar.test", Role: role}
	e.be.AddUser(u, password)
	return u
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	ReqID  string         `json:"req_id"`
	UserID string         `json:"user_id"`
	Status int            `json:"status"`
	Err    string         `json:"err"`
	Fields map[string]any `json:"fields"`
}

type lockedWriter struct {
	mu sync.Mutex
	w  bytes.Buffer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// captureLogs points the application logger at a buffer while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	lw := &lockedWriter{}
	applog.Setup(lw, "debug")
	defer applog.Setup(io.Discard, "info")

	fn()

	lw.mu.Lock()
	defer lw.mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(lw.w.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findAction(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
