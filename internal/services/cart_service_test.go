package services_test

import (
	"context"
	"errors"
	"testing"

	"bazaar/internal/api"
	"bazaar/internal/domain"
	"bazaar/internal/services"
)

func TestCartAddRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.be.AddProduct(physical("p1", "Lamp", "12.50", 10))
	v := f.login(t, "sid", domain.User{ID: "u1", Email: "ann@example.com"})
	ctx := context.Background()

	cart, err := f.carts.Add(ctx, v, "p1", 3)
	if err != nil {
		t.Fatal(err)
	}
	if cart.ItemCount() != 3 || f.be.CartQuantity("u1", "p1") != 3 {
		t.Fatalf("projection=%d server=%d", cart.ItemCount(), f.be.CartQuantity("u1", "p1"))
	}
	if !cart.Total().Equal(money("37.50")) {
		t.Fatalf("total=%s", cart.Total())
	}

	// View serves the projection without another fetch
	gets := f.be.Hits("GET /cart")
	if again, _ := f.carts.View(ctx, v); again.ItemCount() != 3 || f.be.Hits("GET /cart") != gets {
		t.Fatal("view did not use projection")
	}
}

func TestCartAddRequiresLogin(t *testing.T) {
	f := newFixture(t)
	f.be.AddProduct(physical("p1", "Lamp", "12.50", 10))

	_, err := f.carts.Add(context.Background(), services.Viewer{SID: "anon"}, "p1", 1)
	if !errors.Is(err, services.ErrLoginRequired) {
		t.Fatalf("want ErrLoginRequired, got %v", err)
	}
	if f.be.Hits("POST /cart/items") != 0 {
		t.Fatal("anonymous add reached backend")
	}
}

func TestCartStockErrorIsVerbatim(t *testing.T) {
	f := newFixture(t)
	f.be.AddProduct(physical("p1", "Lamp", "12.50", 2))
	v := f.login(t, "sid", domain.User{ID: "u1", Email: "ann@example.com"})

	_, err := f.carts.Add(context.Background(), v, "p1", 3)
	if got := api.UserMessage(err, ""); got != "Insufficient stock for Lamp (only 2 left)" {
		t.Fatalf("message=%q", got)
	}
}

func TestCartUpdateRemoveClear(t *testing.T) {
	f := newFixture(t)
	f.be.AddProduct(physical("p1", "Lamp", "1.00", 10))
	f.be.AddProduct(digital("d1", "Ebook", "5.00"))
	v := f.login(t, "sid", domain.User{ID: "u1", Email: "ann@example.com"})
	ctx := context.Background()

	_, _ = f.carts.Add(ctx, v, "p1", 1)
	_, _ = f.carts.Add(ctx, v, "d1", 1)

	cart, err := f.carts.Update(ctx, v, "p1", 4)
	if err != nil || cart.ItemCount() != 5 {
		t.Fatalf("update: %d %v", cart.ItemCount(), err)
	}
	cart, err = f.carts.Update(ctx, v, "p1", 0)
	if err != nil || len(cart.Items) != 1 || !cart.DigitalOnly() {
		t.Fatalf("update to zero should remove: %+v %v", cart.Items, err)
	}
	cart, err = f.carts.Clear(ctx, v)
	if err != nil || !cart.Empty() {
		t.Fatalf("clear: %+v %v", cart, err)
	}
}

func TestCartPriceChangeVisible(t *testing.T) {
	f := newFixture(t)
	f.be.AddProduct(physical("p1", "Lamp", "10.00", 10))
	v := f.login(t, "sid", domain.User{ID: "u1", Email: "ann@example.com"})
	ctx := context.Background()

	_, _ = f.carts.Add(ctx, v, "p1", 2)
	f.be.SetPrice("p1", money("12.00"))
	cart, err := f.carts.Refresh(ctx, v)
	if err != nil {
		t.Fatal(err)
	}
	it := cart.Items[0]
	if !it.PriceChanged() || !it.PriceSnapshot.Equal(money("10.00")) || !cart.Total().Equal(money("24.00")) {
		t.Fatalf("item=%+v total=%s", it, cart.Total())
	}
}
