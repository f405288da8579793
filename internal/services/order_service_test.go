package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"bazaar/internal/domain"
	"bazaar/internal/services"
)

func checkout(addr, card string) services.CheckoutRequest {
	return services.CheckoutRequest{
		ShippingAddress: addr,
		Payment:         domain.Payment{CardNumber: card, CardHolder: "Ann", Expiry: "12/30", CVV: "123"},
	}
}

func TestPrecheckOrder(t *testing.T) {
	line := func(typ string, qty, avail int) domain.CartItem {
		return domain.CartItem{ProductID: "p", Name: "Thing", Type: typ, Quantity: qty, CurrentPrice: money("1"), AvailableStock: avail}
	}
	cases := []struct {
		name string
		cart domain.Cart
		req  services.CheckoutRequest
		want error
	}{
		{"empty", domain.Cart{}, checkout("1 Main St", goodCard), services.ErrEmptyCart},
		{"address", domain.Cart{Items: []domain.CartItem{line(domain.ProductPhysical, 1, 5)}}, checkout("  ", goodCard), services.ErrAddressRequired},
		{"card short", domain.Cart{Items: []domain.CartItem{line(domain.ProductPhysical, 1, 5)}}, checkout("1 Main St", "4111 1111 1111 111"), services.ErrInvalidCard},
		{"card long", domain.Cart{Items: []domain.CartItem{line(domain.ProductDigital, 1, -1)}}, checkout("", "41111111111111112"), services.ErrInvalidCard},
		{"ok dashed", domain.Cart{Items: []domain.CartItem{line(domain.ProductPhysical, 1, 5)}}, checkout("1 Main St", "4111-1111-1111-1111"), nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, err := services.Precheck(tc.cart, tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err=%v want %v", err, tc.want)
			}
			if err == nil && body.Payment.CardNumber != "4111111111111111" {
				t.Fatalf("card not normalized: %q", body.Payment.CardNumber)
			}
		})
	}
}

func TestPrecheckDigitalOnlyUsesMarker(t *testing.T) {
	cart := domain.Cart{Items: []domain.CartItem{{ProductID: "d1", Type: domain.ProductDigital, Quantity: 1, AvailableStock: -1}}}
	body, err := services.Precheck(cart, checkout("", goodCard))
	if err != nil {
		t.Fatal(err)
	}
	if body.ShippingAddress != domain.DigitalDeliveryMarker {
		t.Fatalf("address=%q", body.ShippingAddress)
	}
}

func TestCheckoutEmptyCartNeverCallsBackend(t *testing.T) {
	f := newFixture(t)
	v := f.login(t, "sid", domain.User{ID: "u1", Email: "ann@example.com"})
	_, err := f.orders.PlaceFromCart(context.Background(), v, checkout("1 Main St", goodCard))
	if !errors.Is(err, services.ErrEmptyCart) {
		t.Fatalf("want ErrEmptyCart, got %v", err)
	}
	if f.be.Hits("POST /orders") != 0 {
		t.Fatal("order endpoint called")
	}
}

func TestCheckoutBlockedByStockNamesProduct(t *testing.T) {
	f := newFixture(t)
	f.be.AddProduct(physical("p1", "Lamp", "10.00", 5))
	v := f.login(t, "sid", domain.User{ID: "u1", Email: "ann@example.com"})
	ctx := context.Background()
	if _, err := f.carts.Add(ctx, v, "p1", 3); err != nil {
		t.Fatal(err)
	}
	f.be.SetStock("p1", 1)

	_, err := f.orders.PlaceFromCart(ctx, v, checkout("1 Main St", goodCard))
	var se *services.InsufficientStockError
	if !errors.As(err, &se) || se.Name != "Lamp" || se.Requested != 3 || se.Available != 1 {
		t.Fatalf("want stock error for Lamp, got %v", err)
	}
	if f.be.Hits("POST /orders") != 0 {
		t.Fatal("order endpoint called despite stock shortfall")
	}
}

func TestCheckoutDigitalOnlySendsMarker(t *testing.T) {
	f := newFixture(t)
	f.be.AddProduct(digital("d1", "Ebook", "7.00"))
	v := f.login(t, "sid", domain.User{ID: "u1", Email: "ann@example.com"})
	ctx := context.Background()
	_, _ = f.carts.Add(ctx, v, "d1", 1)

	o, err := f.orders.PlaceFromCart(ctx, v, checkout("", goodCard))
	if err != nil {
		t.Fatal(err)
	}
	if !o.IsDigital() || f.be.Orders()[0].ShippingAddress != domain.DigitalDeliveryMarker {
		t.Fatalf("order=%+v", o)
	}
}

func TestCheckoutTotalsMatchCart(t *testing.T) {
	f := newFixture(t)
	f.be.AddProduct(physical("p1", "Lamp", "10.25", 5))
	f.be.AddProduct(physical("p2", "Shade", "4.50", 5))
	v := f.login(t, "sid", domain.User{ID: "u1", Email: "ann@example.com"})
	ctx := context.Background()
	_, _ = f.carts.Add(ctx, v, "p1", 2)
	cart, _ := f.carts.Add(ctx, v, "p2", 1)

	o, err := f.orders.PlaceFromCart(ctx, v, checkout("1 Main St", goodCard))
	if err != nil {
		t.Fatal(err)
	}
	if o.ItemCount() != cart.ItemCount() || !o.Total.Equal(cart.Total()) || !o.Total.Equal(money("25.00")) {
		t.Fatalf("order %d/%s vs cart %d/%s", o.ItemCount(), o.Total, cart.ItemCount(), cart.Total())
	}
	after, _ := f.carts.View(ctx, v)
	if !after.Empty() {
		t.Fatal("cart projection not refreshed after order")
	}
	got, err := f.orders.Get(ctx, v, o.ID)
	if err != nil || got.ID != o.ID {
		t.Fatalf("get: %+v %v", got, err)
	}
	hist, _ := f.orders.History(ctx, v)
	if len(hist) != 1 {
		t.Fatalf("history=%d", len(hist))
	}
}

func TestCheckoutConcurrentSubmitPlacesOnce(t *testing.T) {
	f := newFixture(t)
	f.be.AddProduct(physical("p1", "Lamp", "10.00", 5))
	v := f.login(t, "sid", domain.User{ID: "u1", Email: "ann@example.com"})
	ctx := context.Background()
	_, _ = f.carts.Add(ctx, v, "p1", 1)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.orders.PlaceFromCart(ctx, v, checkout("1 Main St", goodCard))
		}()
	}
	wg.Wait()
	if n := len(f.be.Orders()); n != 1 {
		t.Fatalf("orders placed=%d", n)
	}
}

func TestSellerUpdatesOrderStatus(t *testing.T) {
	f := newFixture(t)
	f.be.AddProduct(physical("p1", "Lamp", "10.00", 5))
	buyer := f.login(t, "sid-b", domain.User{ID: "u1", Email: "ann@example.com"})
	seller := f.login(t, "sid-s", domain.User{ID: "s1", Email: "sam@example.com", Role: domain.RoleSeller})
	ctx := context.Background()
	_, _ = f.carts.Add(ctx, buyer, "p1", 1)
	o, err := f.orders.PlaceFromCart(ctx, buyer, checkout("1 Main St", goodCard))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.orders.UpdateStatus(ctx, buyer, o.ID, domain.OrderShipped); !errors.Is(err, services.ErrForbidden) {
		t.Fatalf("buyer changed status: %v", err)
	}
	if _, err := f.orders.UpdateStatus(ctx, seller, o.ID, "lost"); err == nil {
		t.Fatal("unknown status accepted")
	}
	got, err := f.orders.UpdateStatus(ctx, seller, o.ID, "SHIPPED")
	if err != nil || got.Status != domain.OrderShipped {
		t.Fatalf("update: %+v %v", got, err)
	}
	list, _ := f.orders.SellerOrders(ctx, seller)
	if len(list) != 1 || list[0].Status != domain.OrderShipped {
		t.Fatalf("seller orders=%+v", list)
	}
}
