package api_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bazaar/internal/api"
	"bazaar/internal/api/apitest"
	"bazaar/internal/domain"
)

func newClient(t *testing.T) (*apitest.Backend, *api.Client) {
	t.Helper()
	be := apitest.New()
	t.Cleanup(be.Close)
	return be, api.New(be.URL()+"/", 5*time.Second)
}

func TestBearerTokenAndDecode(t *testing.T) {
	be, c := newClient(t)
	tok := be.AddUser(domain.User{ID: "alice", Name: "Alice", Email: "alice@bazaar.test"}, "pw")
	be.AddProduct(domain.Product{ID: "p1", Name: "Widget", Price: decimal.RequireFromString("12.30"), Stock: 4})

	if err := c.Cart.Add(context.Background(), tok, "p1", 2); err != nil {
		t.Fatal(err)
	}
	cart, err := c.Cart.Get(context.Background(), tok)
	if err != nil {
		t.Fatal(err)
	}
	if len(cart.Items) != 1 || !cart.Total().Equal(decimal.RequireFromString("24.6")) {
		t.Fatalf("unexpected cart %+v", cart)
	}

	p, err := c.Products.Get(context.Background(), "p1")
	if err != nil || p.Name != "Widget" || p.AvailableStock() != 4 {
		t.Fatalf("product decode: %+v %v", p, err)
	}
}

func TestErrorMapping(t *testing.T) {
	be, c := newClient(t)
	ctx := context.Background()

	_, err := c.Cart.Get(ctx, "")
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("missing token: want ErrUnauthorized, got %v", err)
	}
	if api.UserMessage(err, "fallback") != "Please log in" {
		t.Fatalf("message not decoded: %v", err)
	}

	_, err = c.Products.Get(ctx, "nope")
	if !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	be.Fail("GET /products", http.StatusServiceUnavailable, "")
	_, err = c.Products.List(ctx, 1, 12)
	var ae *api.Error
	if !errors.As(err, &ae) || ae.Status != http.StatusServiceUnavailable {
		t.Fatalf("want *api.Error 503, got %v", err)
	}
	if api.UserMessage(err, "try later") != "try later" {
		t.Fatal("empty backend message should use the fallback")
	}
}

func TestTransportFailureUsesFallback(t *testing.T) {
	be, c := newClient(t)
	be.Close()
	_, err := c.Products.List(context.Background(), 1, 12)
	if err == nil {
		t.Fatal("expected an error with the backend down")
	}
	var ae *api.Error
	if errors.As(err, &ae) {
		t.Fatalf("transport failure must not look like a backend reply: %v", err)
	}
	if api.UserMessage(err, "offline") != "offline" {
		t.Fatal("fallback not used")
	}
}

func TestCancelledContextSkipsCall(t *testing.T) {
	be, c := newClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Products.List(ctx, 1, 12); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if be.Hits("GET /products") != 0 {
		t.Fatal("request sent on a cancelled context")
	}
}
