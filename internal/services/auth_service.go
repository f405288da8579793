package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"bazaar/internal/api"
	"bazaar/internal/domain"
	"bazaar/internal/poll"
	"bazaar/internal/repos"
	"bazaar/internal/validate"
)

type AuthService struct {
	API      AuthBackend
	Sessions *repos.SessionRepo
	Carts    *CartService
	Threads  *poll.Hub // conversation pollers keyed by sid, may be nil
	Now      func() time.Time
}

func NewAuthService(b AuthBackend, sessions *repos.SessionRepo, carts *CartService) *AuthService {
	return &AuthService{API: b, Sessions: sessions, Carts: carts, Now: time.Now}
}

// tokenExpiry reads the exp claim without verifying the signature; the
// backend remains the authority on validity. Opaque tokens report 0.
func tokenExpiry(token string) int64 {
	var claims jwt.RegisteredClaims
	if _, _, err := new(jwt.Parser).ParseUnverified(token, &claims); err != nil {
		return 0
	}
	if claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Unix()
}

func (s *AuthService) Login(ctx context.Context, sid, email, password string) (*domain.User, error) {
	email, ok := validate.Email(email)
	if !ok || password == "" {
		return nil, ErrBadCreds
	}
	sess, err := s.API.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return nil, ErrBadCreds
		}
		return nil, err
	}
	return s.bind(sid, sess)
}

// Register creates the account and logs the browser in with it. Only buyer
// and seller roles can be self-selected.
func (s *AuthService) Register(ctx context.Context, sid string, reg api.Registration) (*domain.User, error) {
	name, ok := validate.Name(reg.Name)
	if !ok {
		return nil, fieldErr("name", "Name is required (max 50 characters).")
	}
	email, ok := validate.Email(reg.Email)
	if !ok {
		return nil, fieldErr("email", "Enter a valid email address.")
	}
	if !validate.Password(reg.Password) {
		return nil, fieldErr("password", "Password must be 8-64 characters with upper, lower case and a digit.")
	}
	role := strings.ToUpper(strings.TrimSpace(reg.Role))
	if role == "" {
		role = domain.RoleBuyer
	}
	if role != domain.RoleBuyer && role != domain.RoleSeller {
		return nil, fieldErr("role", "Choose buyer or seller.")
	}
	sess, err := s.API.Register(ctx, api.Registration{Name: name, Email: email, Password: reg.Password, Role: role})
	if err != nil {
		return nil, err
	}
	return s.bind(sid, sess)
}

func (s *AuthService) bind(sid string, sess api.Session) (*domain.User, error) {
	if sess.Token == "" {
		return nil, errors.New("backend returned no token")
	}
	if err := s.Sessions.Bind(sid, sess.Token, sess.User, tokenExpiry(sess.Token)); err != nil {
		return nil, err
	}
	u := sess.User
	return &u, nil
}

// Logout tears down everything held for the browser: open conversation
// pollers, the cart projection and the stored session.
func (s *AuthService) Logout(sid string) error {
	if s.Threads != nil {
		s.Threads.CloseSession(sid)
	}
	if s.Carts != nil {
		s.Carts.Forget(sid)
	}
	return s.Sessions.Unbind(sid)
}

func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	email, ok := validate.Email(email)
	if !ok {
		return fieldErr("email", "Enter a valid email address.")
	}
	return s.API.RequestPasswordReset(ctx, email)
}

// Viewer resolves sid into the request's viewer. Unknown sids and expired
// tokens yield an anonymous viewer; an expired session is removed.
func (s *AuthService) Viewer(sid string) (Viewer, error) {
	v := Viewer{SID: sid}
	if sid == "" {
		return v, nil
	}
	sess, err := s.Sessions.Get(sid)
	if errors.Is(err, sql.ErrNoRows) {
		return v, nil
	}
	if err != nil {
		return v, err
	}
	if sess.Expired(s.Now()) {
		return v, s.Logout(sid)
	}
	u := sess.User
	v.Token = sess.Token
	v.User = &u
	return v, nil
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	v, err := s.Viewer(sid)
	if err != nil {
		return nil, err
	}
	if !v.LoggedIn() {
		return nil, ErrLoginRequired
	}
	return v.User, nil
}

// Refresh re-reads the identity from the backend. A rejected token ends the
// session and returns an error matching api.ErrUnauthorized.
func (s *AuthService) Refresh(ctx context.Context, v Viewer) (*domain.User, error) {
	if !v.LoggedIn() {
		return nil, ErrLoginRequired
	}
	u, err := s.API.Me(ctx, v.Token)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			_ = s.Logout(v.SID)
		}
		return nil, err
	}
	if err := s.Sessions.UpdateUser(v.SID, u); err != nil {
		return nil, err
	}
	return &u, nil
}
