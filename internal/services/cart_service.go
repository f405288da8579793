package services

import (
	"context"
	"sync"

	"bazaar/internal/domain"
	"bazaar/internal/validate"
)

// CartService holds the last cart projection the backend returned for each
// browser session. Every mutation goes to the backend first and is followed
// by a full re-fetch, so the projection only ever reflects server state.
type CartService struct {
	API CartBackend

	mu    sync.Mutex
	carts map[string]domain.Cart
}

func NewCartService(b CartBackend) *CartService {
	return &CartService{API: b, carts: map[string]domain.Cart{}}
}

// View returns the cached projection, loading it on first use. Anonymous
// viewers see an empty cart.
func (s *CartService) View(ctx context.Context, v Viewer) (domain.Cart, error) {
	if !v.LoggedIn() {
		return domain.Cart{}, nil
	}
	s.mu.Lock()
	c, ok := s.carts[v.SID]
	s.mu.Unlock()
	if ok {
		return c, nil
	}
	return s.Refresh(ctx, v)
}

// Refresh replaces the projection with the backend's current cart.
func (s *CartService) Refresh(ctx context.Context, v Viewer) (domain.Cart, error) {
	if !v.LoggedIn() {
		return domain.Cart{}, ErrLoginRequired
	}
	c, err := s.API.Get(ctx, v.Token)
	if err != nil {
		return domain.Cart{}, err
	}
	s.mu.Lock()
	s.carts[v.SID] = c
	s.mu.Unlock()
	return c, nil
}

func (s *CartService) Add(ctx context.Context, v Viewer, productID string, qty int) (domain.Cart, error) {
	if !v.LoggedIn() {
		return domain.Cart{}, ErrLoginRequired
	}
	id, ok := validate.ID(productID)
	if !ok {
		return domain.Cart{}, ErrInvalidID
	}
	if err := s.API.Add(ctx, v.Token, id, clampQty(qty)); err != nil {
		return domain.Cart{}, err
	}
	return s.Refresh(ctx, v)
}

// Update sets an item's quantity; zero or less removes the item.
func (s *CartService) Update(ctx context.Context, v Viewer, productID string, qty int) (domain.Cart, error) {
	if qty < 1 {
		return s.Remove(ctx, v, productID)
	}
	if !v.LoggedIn() {
		return domain.Cart{}, ErrLoginRequired
	}
	id, ok := validate.ID(productID)
	if !ok {
		return domain.Cart{}, ErrInvalidID
	}
	if err := s.API.Update(ctx, v.Token, id, clampQty(qty)); err != nil {
		return domain.Cart{}, err
	}
	return s.Refresh(ctx, v)
}

func (s *CartService) Remove(ctx context.Context, v Viewer, productID string) (domain.Cart, error) {
	if !v.LoggedIn() {
		return domain.Cart{}, ErrLoginRequired
	}
	id, ok := validate.ID(productID)
	if !ok {
		return domain.Cart{}, ErrInvalidID
	}
	if err := s.API.Remove(ctx, v.Token, id); err != nil {
		return domain.Cart{}, err
	}
	return s.Refresh(ctx, v)
}

func (s *CartService) Clear(ctx context.Context, v Viewer) (domain.Cart, error) {
	if !v.LoggedIn() {
		return domain.Cart{}, ErrLoginRequired
	}
	if err := s.API.Clear(ctx, v.Token); err != nil {
		return domain.Cart{}, err
	}
	return s.Refresh(ctx, v)
}

// Forget drops the projection for sid (logout, expired session).
func (s *CartService) Forget(sid string) {
	s.mu.Lock()
	delete(s.carts, sid)
	s.mu.Unlock()
}

func clampQty(n int) int {
	switch {
	case n < 1:
		return 1
	case n > 99:
		return 99
	}
	return n
}
