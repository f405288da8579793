package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	applog "bazaar/internal/log"
	"bazaar/internal/services"
)

// LoadViewer resolves the sid cookie once per request and exposes the
// result to handlers, templates and the logger.
func LoadViewer(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resolve(c, auth)
		return c.Next()
	}
}

func resolve(c *fiber.Ctx, auth *services.AuthService) services.Viewer {
	if v, ok := c.Locals("viewer").(services.Viewer); ok {
		return v
	}
	sid := c.Cookies("sid")
	v, err := auth.Viewer(sid)
	if err != nil {
		applog.Error(c, "session.load.fail", err, nil)
		v = services.Viewer{SID: sid}
	}
	c.Locals("viewer", v)
	if v.LoggedIn() {
		c.Locals("user", v.User)
		c.Locals("userID", v.User.ID)
	}
	return v
}

func viewerOf(c *fiber.Ctx) services.Viewer {
	if v, ok := c.Locals("viewer").(services.Viewer); ok {
		return v
	}
	return services.Viewer{SID: c.Cookies("sid")}
}

func toLogin(c *fiber.Ctx) error {
	next := ""
	if c.Method() == fiber.MethodGet {
		next = "?next=" + url.QueryEscape(c.OriginalURL())
	}
	return c.Redirect("/login" + next)
}

// RequireUser enforces that a user is logged in; otherwise redirect to login.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !resolve(c, auth).LoggedIn() {
			return toLogin(c)
		}
		return c.Next()
	}
}

func RequireSeller(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v := resolve(c, auth)
		if !v.LoggedIn() {
			return toLogin(c)
		}
		if !v.User.IsSeller() {
			applog.Security(c, "access.denied.seller", nil)
			return &PageError{Status: fiber.StatusForbidden, Message: "Only sellers can open this page"}
		}
		return c.Next()
	}
}

func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v := resolve(c, auth)
		if !v.LoggedIn() {
			return toLogin(c)
		}
		if !v.User.IsAdmin() {
			applog.Security(c, "access.denied.admin", nil)
			return &PageError{Status: fiber.StatusForbidden, Message: "Access denied"}
		}
		return c.Next()
	}
}
