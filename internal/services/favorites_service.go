package services

import (
	"context"

	"bazaar/internal/domain"
	"bazaar/internal/validate"
)

type FavoritesService struct {
	API FavoriteBackend
}

func NewFavoritesService(b FavoriteBackend) *FavoritesService {
	return &FavoritesService{API: b}
}

func (s *FavoritesService) List(ctx context.Context, v Viewer) ([]domain.Favorite, error) {
	if !v.LoggedIn() {
		return nil, ErrLoginRequired
	}
	return s.API.List(ctx, v.Token)
}

func (s *FavoritesService) Add(ctx context.Context, v Viewer, productID string) error {
	if !v.LoggedIn() {
		return ErrLoginRequired
	}
	id, ok := validate.ID(productID)
	if !ok {
		return ErrInvalidID
	}
	return s.API.Add(ctx, v.Token, id)
}

func (s *FavoritesService) Remove(ctx context.Context, v Viewer, productID string) error {
	if !v.LoggedIn() {
		return ErrLoginRequired
	}
	id, ok := validate.ID(productID)
	if !ok {
		return ErrInvalidID
	}
	return s.API.Remove(ctx, v.Token, id)
}
