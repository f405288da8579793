package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"bazaar/internal/domain"
)

func TestSearchValidation(t *testing.T) {
	e := newEnv(t, testLimits)
	e.be.AddProduct(domain.Product{ID: "p1", Name: "Blue Widget", Price: money("5"), Stock: 2, SellerID: "sam"})
	b := e.browser(t)

	if resp := b.get("/search"); resp.StatusCode != http.StatusOK {
		t.Fatalf("empty search page: %d", resp.StatusCode)
	}
	resp := b.get("/search?q=%3Cscript%3E")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for markup in query, got %d", resp.StatusCode)
	}
	if strings.Contains(body(t, resp), "<script>") {
		t.Fatal("query echoed unescaped")
	}
	if resp := b.get("/search?q=" + strings.Repeat("a", 51)); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for an over-long query, got %d", resp.StatusCode)
	}
	if e.be.Hits("GET /products/search") != 0 {
		t.Fatal("invalid query reached the backend")
	}

	page := body(t, b.get("/search?q=widget"))
	if !strings.Contains(page, "Blue Widget") {
		t.Fatal("search result missing")
	}
}

func TestSearchIsRateLimited(t *testing.T) {
	lim := testLimits
	lim.Search = 3
	e := newEnv(t, lim)
	b := e.browser(t)
	for i := 0; i < 3; i++ {
		if resp := b.get("/search?q=lamp"); resp.StatusCode != http.StatusOK {
			t.Fatalf("search %d: %d", i, resp.StatusCode)
		}
	}
	if resp := b.get("/search?q=lamp"); resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
}

func TestGlobalRateLimit(t *testing.T) {
	lim := testLimits
	lim.Global = 5
	e := newEnv(t, lim)
	b := e.browser(t)
	for i := 0; i < 5; i++ {
		b.get("/login")
	}
	if resp := b.get("/login"); resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	if resp := b.get("/healthz"); resp.StatusCode != http.StatusOK {
		t.Fatalf("health checks must bypass the limiter, got %d", resp.StatusCode)
	}
}

func TestAvailabilityEndpoint(t *testing.T) {
	lim := testLimits
	lim.Availability = 2
	e := newEnv(t, lim)
	e.be.AddProduct(domain.Product{ID: "p1", Name: "Widget", Price: money("5"), Stock: 40, SellerID: "sam"})
	b := e.browser(t)

	if resp := b.get("/api/v1/availability?productId=../x"); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", resp.StatusCode)
	}
	resp := b.get("/api/v1/availability?productId=p1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("availability: %d", resp.StatusCode)
	}
	var got domain.Availability
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Status != "IN_STOCK" || got.Qty != 40 {
		t.Fatalf("unexpected availability %+v", got)
	}
	if resp := b.get("/api/v1/availability?productId=p1"); resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
}

func TestOversizedBodyIsRejected(t *testing.T) {
	e := newEnv(t, testLimits)
	e.user("alice", domain.RoleBuyer)
	b := e.browser(t)
	b.login("alice@bazaar.test")

	form := url.Values{"content": {strings.Repeat("a", 2<<20)}, "csrf": {b.jar["csrf_"]}}
	req := httptest.NewRequest(http.MethodPost, "/messages/c1", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "sid", Value: b.jar["sid"]})
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: b.jar["csrf_"]})
	resp, err := e.app.Test(req, 5000)
	// app.Test surfaces the oversize body as an error rather than a response
	if err != nil {
		if strings.Contains(err.Error(), "body size exceeds") || strings.Contains(err.Error(), "too large") {
			return
		}
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.StatusCode)
	}
	if e.be.Hits("POST /conversations/:id/messages") != 0 {
		t.Fatal("oversized message reached the backend")
	}
}
