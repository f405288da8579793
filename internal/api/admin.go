package api

import (
	"context"
	"net/url"

	"bazaar/internal/domain"
)

type AdminAPI struct{ c *Client }

func (a *AdminAPI) Users(ctx context.Context, token string) ([]domain.User, error) {
	var out []domain.User
	err := a.c.do(ctx, "admin", "GET", "/admin/users", token, nil, &out)
	return out, err
}

func (a *AdminAPI) Ban(ctx context.Context, token, userID string) error {
	return a.c.do(ctx, "admin", "POST", "/admin/users/"+url.PathEscape(userID)+"/ban", token, nil, nil)
}

func (a *AdminAPI) Unban(ctx context.Context, token, userID string) error {
	return a.c.do(ctx, "admin", "POST", "/admin/users/"+url.PathEscape(userID)+"/unban", token, nil, nil)
}

func (a *AdminAPI) Stats(ctx context.Context, token string) (domain.DashboardStats, error) {
	var s domain.DashboardStats
	err := a.c.do(ctx, "admin", "GET", "/admin/stats", token, nil, &s)
	return s, err
}
