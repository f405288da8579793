package api

import (
	"context"
	"net/url"

	"bazaar/internal/domain"
)

type FavoriteAPI struct{ c *Client }

func (a *FavoriteAPI) List(ctx context.Context, token string) ([]domain.Favorite, error) {
	var out []domain.Favorite
	err := a.c.do(ctx, "favorites", "GET", "/favorites", token, nil, &out)
	return out, err
}

func (a *FavoriteAPI) Add(ctx context.Context, token, productID string) error {
	return a.c.do(ctx, "favorites", "POST", "/favorites", token, map[string]string{"productId": productID}, nil)
}

func (a *FavoriteAPI) Remove(ctx context.Context, token, productID string) error {
	return a.c.do(ctx, "favorites", "DELETE", "/favorites/"+url.PathEscape(productID), token, nil, nil)
}
