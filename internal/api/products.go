package api

import (
	"context"
	"net/url"
	"strconv"

	"bazaar/internal/domain"
)

type ProductAPI struct{ c *Client }

func (a *ProductAPI) List(ctx context.Context, page, limit int) (domain.ProductPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	var out domain.ProductPage
	err := a.c.do(ctx, "products", "GET", "/products?"+q.Encode(), "", nil, &out)
	return out, err
}

func (a *ProductAPI) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := a.c.do(ctx, "products", "GET", "/products/"+url.PathEscape(id), "", nil, &p)
	return p, err
}

func (a *ProductAPI) Search(ctx context.Context, query string) ([]domain.Product, error) {
	var out []domain.Product
	err := a.c.do(ctx, "products", "GET", "/products/search?q="+url.QueryEscape(query), "", nil, &out)
	return out, err
}

func (a *ProductAPI) Create(ctx context.Context, token string, in domain.ProductInput) (domain.Product, error) {
	var p domain.Product
	err := a.c.do(ctx, "products", "POST", "/products", token, in, &p)
	return p, err
}

func (a *ProductAPI) Update(ctx context.Context, token, id string, in domain.ProductInput) (domain.Product, error) {
	var p domain.Product
	err := a.c.do(ctx, "products", "PUT", "/products/"+url.PathEscape(id), token, in, &p)
	return p, err
}

func (a *ProductAPI) Delete(ctx context.Context, token, id string) error {
	return a.c.do(ctx, "products", "DELETE", "/products/"+url.PathEscape(id), token, nil, nil)
}
