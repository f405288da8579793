package services

import (
	"context"

	"bazaar/internal/api"
	"bazaar/internal/domain"
)

// The services depend on these narrow views of the backend client so tests
// can substitute any of them. *api.Client's resource types satisfy them.

type AuthBackend interface {
	Login(ctx context.Context, creds api.Credentials) (api.Session, error)
	Register(ctx context.Context, reg api.Registration) (api.Session, error)
	RequestPasswordReset(ctx context.Context, email string) error
	Me(ctx context.Context, token string) (domain.User, error)
}

type ProductBackend interface {
	List(ctx context.Context, page, limit int) (domain.ProductPage, error)
	Get(ctx context.Context, id string) (domain.Product, error)
	Search(ctx context.Context, query string) ([]domain.Product, error)
	Create(ctx context.Context, token string, in domain.ProductInput) (domain.Product, error)
	Update(ctx context.Context, token, id string, in domain.ProductInput) (domain.Product, error)
	Delete(ctx context.Context, token, id string) error
}

type CartBackend interface {
	Get(ctx context.Context, token string) (domain.Cart, error)
	Add(ctx context.Context, token, productID string, qty int) error
	Update(ctx context.Context, token, productID string, qty int) error
	Remove(ctx context.Context, token, productID string) error
	Clear(ctx context.Context, token string) error
}

type OrderBackend interface {
	Place(ctx context.Context, token string, req domain.PlaceOrder) (domain.Order, error)
	Get(ctx context.Context, token, id string) (domain.Order, error)
	List(ctx context.Context, token string) ([]domain.Order, error)
	SellerList(ctx context.Context, token string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, token, id, status string) (domain.Order, error)
}

type ConversationBackend interface {
	List(ctx context.Context, token string) ([]domain.Conversation, error)
	Get(ctx context.Context, token, id string) (domain.Conversation, error)
	Messages(ctx context.Context, token, id string) ([]domain.Message, error)
	Send(ctx context.Context, token, id, content string) (domain.Message, error)
	Start(ctx context.Context, token string, req api.StartConversation) (domain.Conversation, error)
}

type SellerBackend interface {
	List(ctx context.Context) ([]domain.SellerProfile, error)
	Get(ctx context.Context, id string) (domain.SellerProfile, error)
	Profile(ctx context.Context, token string) (domain.SellerProfile, error)
	UpdateProfile(ctx context.Context, token string, in api.ProfileUpdate) (domain.SellerProfile, error)
	Dashboard(ctx context.Context, token string) (domain.SellerDashboard, error)
}

type FavoriteBackend interface {
	List(ctx context.Context, token string) ([]domain.Favorite, error)
	Add(ctx context.Context, token, productID string) error
	Remove(ctx context.Context, token, productID string) error
}

type AdminBackend interface {
	Users(ctx context.Context, token string) ([]domain.User, error)
	Ban(ctx context.Context, token, userID string) error
	Unban(ctx context.Context, token, userID string) error
	Stats(ctx context.Context, token string) (domain.DashboardStats, error)
}
