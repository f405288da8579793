package api

import (
	"context"
	"net/url"

	"bazaar/internal/domain"
)

type SellerAPI struct{ c *Client }

type ProfileUpdate struct {
	ShopName string `json:"shopName"`
	Bio      string `json:"bio"`
}

func (a *SellerAPI) List(ctx context.Context) ([]domain.SellerProfile, error) {
	var out []domain.SellerProfile
	err := a.c.do(ctx, "sellers", "GET", "/sellers", "", nil, &out)
	return out, err
}

// Get returns the seller profile including its product list.
func (a *SellerAPI) Get(ctx context.Context, id string) (domain.SellerProfile, error) {
	var p domain.SellerProfile
	err := a.c.do(ctx, "sellers", "GET", "/sellers/"+url.PathEscape(id), "", nil, &p)
	return p, err
}

func (a *SellerAPI) Profile(ctx context.Context, token string) (domain.SellerProfile, error) {
	var p domain.SellerProfile
	err := a.c.do(ctx, "sellers", "GET", "/seller/profile", token, nil, &p)
	return p, err
}

func (a *SellerAPI) UpdateProfile(ctx context.Context, token string, in ProfileUpdate) (domain.SellerProfile, error) {
	var p domain.SellerProfile
	err := a.c.do(ctx, "sellers", "PUT", "/seller/profile", token, in, &p)
	return p, err
}

func (a *SellerAPI) Dashboard(ctx context.Context, token string) (domain.SellerDashboard, error) {
	var d domain.SellerDashboard
	err := a.c.do(ctx, "sellers", "GET", "/seller/dashboard", token, nil, &d)
	return d, err
}
