package api

import (
	"context"

	"bazaar/internal/domain"
)

type AuthAPI struct{ c *Client }

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// Session is what the backend returns on login and registration.
type Session struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (a *AuthAPI) Login(ctx context.Context, creds Credentials) (Session, error) {
	var s Session
	err := a.c.do(ctx, "auth", "POST", "/auth/login", "", creds, &s)
	return s, err
}

func (a *AuthAPI) Register(ctx context.Context, reg Registration) (Session, error) {
	var s Session
	err := a.c.do(ctx, "auth", "POST", "/auth/register", "", reg, &s)
	return s, err
}

func (a *AuthAPI) RequestPasswordReset(ctx context.Context, email string) error {
	return a.c.do(ctx, "auth", "POST", "/auth/password-reset", "", map[string]string{"email": email}, nil)
}

func (a *AuthAPI) Me(ctx context.Context, token string) (domain.User, error) {
	var u domain.User
	err := a.c.do(ctx, "auth", "GET", "/auth/me", token, nil, &u)
	return u, err
}
