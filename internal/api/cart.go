package api

import (
	"context"
	"net/url"

	"bazaar/internal/domain"
)

type CartAPI struct{ c *Client }

type cartLine struct {
	ProductID string `json:"productId,omitempty"`
	Quantity  int    `json:"quantity"`
}

func (a *CartAPI) Get(ctx context.Context, token string) (domain.Cart, error) {
	var cart domain.Cart
	err := a.c.do(ctx, "cart", "GET", "/cart", token, nil, &cart)
	return cart, err
}

func (a *CartAPI) Add(ctx context.Context, token, productID string, qty int) error {
	return a.c.do(ctx, "cart", "POST", "/cart/items", token, cartLine{ProductID: productID, Quantity: qty}, nil)
}

func (a *CartAPI) Update(ctx context.Context, token, productID string, qty int) error {
	return a.c.do(ctx, "cart", "PUT", "/cart/items/"+url.PathEscape(productID), token, cartLine{Quantity: qty}, nil)
}

func (a *CartAPI) Remove(ctx context.Context, token, productID string) error {
	return a.c.do(ctx, "cart", "DELETE", "/cart/items/"+url.PathEscape(productID), token, nil, nil)
}

func (a *CartAPI) Clear(ctx context.Context, token string) error {
	return a.c.do(ctx, "cart", "DELETE", "/cart", token, nil, nil)
}
