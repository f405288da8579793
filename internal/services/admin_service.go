package services

import (
	"context"

	"bazaar/internal/domain"
	"bazaar/internal/validate"
)

type AdminService struct {
	API AdminBackend
}

func NewAdminService(b AdminBackend) *AdminService { return &AdminService{API: b} }

func (s *AdminService) Users(ctx context.Context, v Viewer) ([]domain.User, error) {
	if !v.User.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.API.Users(ctx, v.Token)
}

// SetBanned bans or unbans userID and returns the refreshed user list.
func (s *AdminService) SetBanned(ctx context.Context, v Viewer, userID string, banned bool) ([]domain.User, error) {
	if !v.User.IsAdmin() {
		return nil, ErrForbidden
	}
	id, ok := validate.ID(userID)
	if !ok {
		return nil, ErrInvalidID
	}
	if id == v.UserID() {
		return nil, fieldErr("user", "You cannot ban yourself.")
	}
	var err error
	if banned {
		err = s.API.Ban(ctx, v.Token, id)
	} else {
		err = s.API.Unban(ctx, v.Token, id)
	}
	if err != nil {
		return nil, err
	}
	return s.API.Users(ctx, v.Token)
}

func (s *AdminService) Stats(ctx context.Context, v Viewer) (domain.DashboardStats, error) {
	if !v.User.IsAdmin() {
		return domain.DashboardStats{}, ErrForbidden
	}
	return s.API.Stats(ctx, v.Token)
}
