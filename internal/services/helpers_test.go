package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bazaar/internal/api"
	"bazaar/internal/api/apitest"
	"bazaar/internal/domain"
	"bazaar/internal/poll"
	"bazaar/internal/repos"
	"bazaar/internal/services"
)

type fixture struct {
	be       *apitest.Backend
	client   *api.Client
	sessions *repos.SessionRepo
	auth     *services.AuthService
	carts    *services.CartService
	orders   *services.OrderService
	admin    *services.AdminService
	sellers  *services.SellerService
	messages *services.MessageService
	hub      *poll.Hub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	be := apitest.New()
	t.Cleanup(be.Close)

	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	c := api.New(be.URL(), 5*time.Second)
	sessions := repos.NewSessionRepo(db)
	carts := services.NewCartService(c.Cart)
	hub := poll.NewHub(context.Background())
	t.Cleanup(hub.CloseAll)
	auth := services.NewAuthService(c.Auth, sessions, carts)
	auth.Threads = hub

	return &fixture{
		be:       be,
		client:   c,
		sessions: sessions,
		auth:     auth,
		carts:    carts,
		orders:   services.NewOrderService(c.Orders, carts),
		admin:    services.NewAdminService(c.Admin),
		sellers:  services.NewSellerService(c.Sellers, c.Products),
		messages: services.NewMessageService(c.Conversations, hub, time.Hour),
		hub:      hub,
	}
}

// login seeds a user and logs sid in through the auth service.
func (f *fixture) login(t *testing.T, sid string, u domain.User) services.Viewer {
	t.Helper()
	f.be.AddUser(u, "Secret123")
	if _, err := f.auth.Login(context.Background(), sid, u.Email, "Secret123"); err != nil {
		t.Fatalf("login %s: %v", u.Email, err)
	}
	v, err := f.auth.Viewer(sid)
	if err != nil || !v.LoggedIn() {
		t.Fatalf("viewer %s: %+v %v", sid, v, err)
	}
	return v
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func physical(id, name, price string, stock int) domain.Product {
	return domain.Product{ID: id, Name: name, Price: money(price), Type: domain.ProductPhysical, Stock: stock, SellerID: "s1"}
}

func digital(id, name, price string) domain.Product {
	return domain.Product{ID: id, Name: name, Price: money(price), Type: domain.ProductDigital, SellerID: "s1"}
}

const goodCard = "4111 1111 1111 1111"
