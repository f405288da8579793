package handlers

import (
	"time"

	"bazaar/internal/api"
	"bazaar/internal/poll"
	"bazaar/internal/repos"
	"bazaar/internal/services"
)

type Deps struct {
	Auth *services.AuthService
	Hub  *poll.Hub

	AuthHandler      *AuthHandler
	ProductHandler   *ProductHandler
	InventoryHandler *InventoryHandler
	SearchHandler    *SearchHandler
	CartHandler      *CartHandler
	OrderHandler     *OrderHandler
	FavoritesHandler *FavoritesHandler
	ShopHandler      *ShopHandler
	MessageHandler   *MessageHandler
	SellerHandler    *SellerHandler
	AdminHandler     *AdminHandler
}

type Options struct {
	PollInterval time.Duration
	SecureCookie bool
}

// NewDeps wires every service and handler over one backend client.
func NewDeps(client *api.Client, sessions *repos.SessionRepo, hub *poll.Hub, opts Options) *Deps {
	cartSvc := services.NewCartService(client.Cart)
	authSvc := services.NewAuthService(client.Auth, sessions, cartSvc)
	authSvc.Threads = hub
	catalogSvc := services.NewCatalogService(client.Products, client.Sellers)
	invSvc := services.NewInventoryService(client.Products)
	orderSvc := services.NewOrderService(client.Orders, cartSvc)
	favSvc := services.NewFavoritesService(client.Favorites)
	msgSvc := services.NewMessageService(client.Conversations, hub, opts.PollInterval)
	sellerSvc := services.NewSellerService(client.Sellers, client.Products)
	adminSvc := services.NewAdminService(client.Admin)

	return &Deps{
		Auth: authSvc,
		Hub:  hub,

		AuthHandler:      &AuthHandler{Auth: authSvc, SecureCookie: opts.SecureCookie},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc, Inventory: invSvc, Favorites: favSvc},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		SearchHandler:    &SearchHandler{Catalog: catalogSvc},
		CartHandler:      &CartHandler{Cart: cartSvc},
		OrderHandler:     &OrderHandler{Cart: cartSvc, Order: orderSvc},
		FavoritesHandler: &FavoritesHandler{Favorites: favSvc},
		ShopHandler:      &ShopHandler{Catalog: catalogSvc},
		MessageHandler:   &MessageHandler{Messages: msgSvc},
		SellerHandler:    &SellerHandler{Sellers: sellerSvc, Catalog: catalogSvc, Orders: orderSvc},
		AdminHandler:     &AdminHandler{Admin: adminSvc},
	}
}
