package services_test

import (
	"context"
	"errors"
	"testing"

	"bazaar/internal/domain"
	"bazaar/internal/services"
)

func TestProductFormParse(t *testing.T) {
	ok := services.ProductForm{Name: "Lamp", Price: "9.99", Type: "physical", Stock: "4"}
	in, err := ok.Parse()
	if err != nil || !in.Price.Equal(money("9.99")) || in.Stock != 4 || in.Type != domain.ProductPhysical {
		t.Fatalf("parse: %+v %v", in, err)
	}

	bad := []struct {
		form  services.ProductForm
		field string
	}{
		{services.ProductForm{Price: "1", Type: "PHYSICAL", Stock: "1"}, "name"},
		{services.ProductForm{Name: "x", Price: "1.999", Type: "PHYSICAL", Stock: "1"}, "price"},
		{services.ProductForm{Name: "x", Price: "-1", Type: "PHYSICAL", Stock: "1"}, "price"},
		{services.ProductForm{Name: "x", Price: "1", Type: "SERVICE", Stock: "1"}, "type"},
		{services.ProductForm{Name: "x", Price: "1", Type: "PHYSICAL", Stock: "-2"}, "stock"},
		{services.ProductForm{Name: "x", Price: "1", Type: "PHYSICAL", Stock: "1", PreviewImageURL: "javascript:alert(1)"}, "previewImageUrl"},
	}
	for _, tc := range bad {
		_, err := tc.form.Parse()
		var fe *services.FieldError
		if !errors.As(err, &fe) || fe.Field != tc.field {
			t.Errorf("%+v: got %v, want field %s", tc.form, err, tc.field)
		}
	}

	dig, err := services.ProductForm{Name: "Ebook", Price: "3", Type: "DIGITAL"}.Parse()
	if err != nil || !dig.Unlimited {
		t.Fatalf("digital: %+v %v", dig, err)
	}
}

func TestSellerProductLifecycle(t *testing.T) {
	f := newFixture(t)
	seller := f.login(t, "sid", domain.User{ID: "s1", Name: "Sam", Email: "sam@example.com", Role: domain.RoleSeller})
	ctx := context.Background()

	p, err := f.sellers.CreateProduct(ctx, seller, services.ProductForm{Name: "Lamp", Price: "9.99", Type: "PHYSICAL", Stock: "3"})
	if err != nil {
		t.Fatal(err)
	}
	mine, _ := f.sellers.Products(ctx, seller)
	if len(mine) != 1 || mine[0].ID != p.ID {
		t.Fatalf("products=%+v", mine)
	}
	up, err := f.sellers.UpdateProduct(ctx, seller, p.ID, services.ProductForm{Name: "Desk lamp", Price: "11", Type: "PHYSICAL", Stock: "3"})
	if err != nil || up.Name != "Desk lamp" {
		t.Fatalf("update: %+v %v", up, err)
	}
	if err := f.sellers.DeleteProduct(ctx, seller, p.ID); err != nil {
		t.Fatal(err)
	}
	if mine, _ = f.sellers.Products(ctx, seller); len(mine) != 0 {
		t.Fatalf("still listed: %+v", mine)
	}

	prof, err := f.sellers.UpdateProfile(ctx, seller, "Sam's Lamps", "Bright ideas")
	if err != nil || prof.ShopName != "Sam's Lamps" {
		t.Fatalf("profile: %+v %v", prof, err)
	}
}

func TestBuyerCannotManageProducts(t *testing.T) {
	f := newFixture(t)
	buyer := f.login(t, "sid", domain.User{ID: "u1", Email: "ann@example.com"})
	_, err := f.sellers.CreateProduct(context.Background(), buyer, services.ProductForm{Name: "x", Price: "1", Type: "DIGITAL"})
	if !errors.Is(err, services.ErrForbidden) || f.be.Hits("POST /products") != 0 {
		t.Fatalf("err=%v", err)
	}
}
