package api

import (
	"context"
	"net/url"

	"bazaar/internal/domain"
)

type OrderAPI struct{ c *Client }

func (a *OrderAPI) Place(ctx context.Context, token string, req domain.PlaceOrder) (domain.Order, error) {
	var o domain.Order
	err := a.c.do(ctx, "orders", "POST", "/orders", token, req, &o)
	return o, err
}

func (a *OrderAPI) Get(ctx context.Context, token, id string) (domain.Order, error) {
	var o domain.Order
	err := a.c.do(ctx, "orders", "GET", "/orders/"+url.PathEscape(id), token, nil, &o)
	return o, err
}

func (a *OrderAPI) List(ctx context.Context, token string) ([]domain.Order, error) {
	var out []domain.Order
	err := a.c.do(ctx, "orders", "GET", "/orders", token, nil, &out)
	return out, err
}

func (a *OrderAPI) SellerList(ctx context.Context, token string) ([]domain.Order, error) {
	var out []domain.Order
	err := a.c.do(ctx, "orders", "GET", "/seller/orders", token, nil, &out)
	return out, err
}

func (a *OrderAPI) UpdateStatus(ctx context.Context, token, id, status string) (domain.Order, error) {
	var o domain.Order
	err := a.c.do(ctx, "orders", "PATCH", "/seller/orders/"+url.PathEscape(id)+"/status", token,
		map[string]string{"status": status}, &o)
	return o, err
}
