package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	applog "bazaar/internal/log"
	"bazaar/internal/metrics"
	"bazaar/web"
)

// Limits are per-IP request budgets.
type Limits struct {
	Global       int // per minute, all pages
	Login        int // per 10 minutes, login and password reset
	Search       int // per minute
	Availability int // per 30 seconds
}

var DefaultLimits = Limits{Global: 120, Login: 5, Search: 20, Availability: 15}

// NewApp builds the storefront: middleware, routes and the error surface.
func NewApp(d *Deps, lim Limits) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "bazaar",
		Views:        web.Engine(),
		ErrorHandler: ErrorHandler(d.Auth),
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		BodyLimit:    1 << 20, // 1 MiB
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New(helmet.Config{CrossOriginEmbedderPolicy: "unsafe-none"}))
	app.Use(LoadViewer(d.Auth))
	app.Use(limiter.New(limiter.Config{
		Max:        lim.Global,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return p == "/healthz" || p == "/metrics" || strings.HasSuffix(p, "/events")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   d.AuthHandler.SecureCookie,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			c.Status(fiber.StatusForbidden)
			return render(c, "error", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	// ---------- Ops ----------
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	// Public pages
	app.Get("/", d.ProductHandler.Home)
	app.Get("/product/:id", d.ProductHandler.Detail)
	app.Get("/search", limiter.New(limiter.Config{
		Max:        lim.Search,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.search.hit", nil)
			return renderStatus(c, fiber.StatusTooManyRequests, "search", fiber.Map{"Q": "", "Count": 0, "Err": "Too many searches. Please wait a moment."})
		},
	}), d.SearchHandler.Search)
	app.Get("/shops", d.ShopHandler.List)
	app.Get("/shops/:id", d.ShopHandler.Detail)

	api := app.Group("/api/v1")
	api.Get("/availability", limiter.New(limiter.Config{
		Max:        lim.Availability,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}), d.InventoryHandler.Check)

	// Auth routes (login throttled)
	authLimit := limiter.New(limiter.Config{
		Max:        lim.Login,
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|auth"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return renderStatus(c, fiber.StatusTooManyRequests, "login", fiber.Map{"Email": "", "Next": "/", "Err": "Too many attempts. Please try again later."})
		},
	})
	app.Get("/login", d.AuthHandler.LoginForm)
	app.Post("/login", authLimit, d.AuthHandler.Login)
	app.Get("/register", d.AuthHandler.RegisterForm)
	app.Post("/register", d.AuthHandler.Register)
	app.Get("/password-reset", d.AuthHandler.ResetForm)
	app.Post("/password-reset", authLimit, d.AuthHandler.ResetRequest)
	app.Post("/logout", d.AuthHandler.Logout)

	// Cart & Orders
	user := RequireUser(d.Auth)
	app.Get("/cart", user, d.CartHandler.View)
	app.Post("/cart", user, d.CartHandler.Add)
	app.Post("/cart/update", user, d.CartHandler.Update)
	app.Post("/cart/remove", user, d.CartHandler.Remove)
	app.Post("/cart/clear", user, d.CartHandler.Clear)
	app.Get("/checkout", user, d.OrderHandler.Checkout)
	app.Post("/checkout", user, d.OrderHandler.Place)
	app.Get("/order/:id", user, d.OrderHandler.View)
	app.Get("/orders", user, d.OrderHandler.History)

	// Favorites
	app.Get("/favorites", user, d.FavoritesHandler.List)
	app.Post("/favorites", user, d.FavoritesHandler.Save)
	app.Post("/favorites/delete", user, d.FavoritesHandler.Unsave)

	// Messages
	msgs := app.Group("/messages", user)
	msgs.Get("/", d.MessageHandler.List)
	msgs.Post("/start", d.MessageHandler.Start)
	msgs.Get("/:id", d.MessageHandler.Thread)
	msgs.Post("/:id", d.MessageHandler.Send)
	msgs.Get("/:id/events", d.MessageHandler.Events)

	// Seller
	seller := app.Group("/seller", RequireSeller(d.Auth))
	seller.Get("/", d.SellerHandler.Dashboard)
	seller.Get("/products", d.SellerHandler.Products)
	seller.Get("/products/new", d.SellerHandler.NewProduct)
	seller.Post("/products", d.SellerHandler.CreateProduct)
	seller.Get("/products/:id/edit", d.SellerHandler.EditProduct)
	seller.Post("/products/:id", d.SellerHandler.UpdateProduct)
	seller.Post("/products/:id/delete", d.SellerHandler.DeleteProduct)
	seller.Get("/orders", d.SellerHandler.OrdersPage)
	seller.Post("/orders/:id/status", d.SellerHandler.UpdateOrderStatus)
	seller.Get("/profile", d.SellerHandler.Profile)
	seller.Post("/profile", d.SellerHandler.SaveProfile)

	// Admin
	admin := app.Group("/admin", RequireAdmin(d.Auth))
	admin.Get("/", d.AdminHandler.Dashboard)
	admin.Get("/users", d.AdminHandler.UsersPage)
	admin.Post("/users/:id/ban", d.AdminHandler.Ban)
	admin.Post("/users/:id/unban", d.AdminHandler.Unban)

	// 404
	app.Use(func(c *fiber.Ctx) error {
		return &PageError{Status: fiber.StatusNotFound, Message: "Page not found"}
	})
	return app
}
