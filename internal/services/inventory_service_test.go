package services_test

import (
	"context"
	"testing"
	"time"

	"bazaar/internal/api"
	"bazaar/internal/api/apitest"
	"bazaar/internal/domain"
	"bazaar/internal/services"
)

func TestInventoryService_Availability(t *testing.T) {
	svc := services.NewInventoryService(nil)
	cases := []struct {
		p      domain.Product
		status string
		qty    int
	}{
		{domain.Product{Type: domain.ProductPhysical, Stock: 6}, services.StockInStock, 6},
		{domain.Product{Type: domain.ProductPhysical, Stock: 6, Reserved: 2}, services.StockLow, 4},
		{domain.Product{Type: domain.ProductPhysical, Stock: 2, Reserved: 5}, services.StockOut, 0},
		{domain.Product{Type: domain.ProductPhysical, Unlimited: true}, services.StockUnlimited, 0},
		{domain.Product{Type: domain.ProductDigital}, services.StockUnlimited, 0},
	}
	for _, tc := range cases {
		a := svc.Availability(tc.p)
		if a.Status != tc.status || a.Qty != tc.qty {
			t.Errorf("%+v: got %+v, want %s(%d)", tc.p, a, tc.status, tc.qty)
		}
	}
}

func TestInventoryService_CheckAvailability(t *testing.T) {
	be := apitest.New()
	defer be.Close()
	be.AddProduct(domain.Product{ID: "p1", Name: "Lamp", Type: domain.ProductPhysical, Stock: 6})
	svc := services.NewInventoryService(api.New(be.URL(), time.Second).Products)

	a, err := svc.CheckAvailability(context.Background(), "p1")
	if err != nil {
		t.Fatal(err)
	}
	if a.Status != services.StockInStock || a.Qty != 6 {
		t.Fatalf("want IN_STOCK(6), got %+v", a)
	}
	if _, err := svc.CheckAvailability(context.Background(), "missing"); err == nil {
		t.Fatal("missing product reported available")
	}
}
