package handlers

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"bazaar/internal/domain"
)

// notices are fixed messages selected by the ?notice= query parameter.
var notices = map[string]string{
	"empty-cart":   "Your cart is empty. Add something before checking out.",
	"logged-out":   "You have been logged out.",
	"registered":   "Welcome! Your account is ready.",
	"reset-sent":   "If that address has an account, a reset link is on its way.",
	"added":        "Added to your cart.",
	"saved":        "Saved.",
	"deleted":      "Deleted.",
	"session-lost": "Your session has ended. Please log in again.",
}

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u, ok := c.Locals("user").(*domain.User); ok && u != nil {
		data["User"] = u
	}
	// token from the CSRF middleware, falling back to its cookie
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	data["CSRFToken"] = tok
	if msg := takeFlash(c); msg != "" {
		data["Flash"] = msg
	}
	if n, ok := notices[c.Query("notice")]; ok {
		data["Notice"] = n
	}
	return c.Render(tmpl, data)
}

func renderStatus(c *fiber.Ctx, status int, tmpl string, data fiber.Map) error {
	c.Status(status)
	return render(c, tmpl, data)
}

// setFlash stores a one-shot message shown by the next rendered page.
func setFlash(c *fiber.Ctx, msg string) {
	c.Cookie(&fiber.Cookie{
		Name:     "flash",
		Value:    url.QueryEscape(msg),
		Path:     "/",
		MaxAge:   60,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func takeFlash(c *fiber.Ctx) string {
	raw := c.Cookies("flash")
	if raw == "" {
		return ""
	}
	c.Cookie(&fiber.Cookie{Name: "flash", Value: "", Path: "/", Expires: time.Now().Add(-time.Hour)})
	msg, err := url.QueryUnescape(raw)
	if err != nil {
		return ""
	}
	return msg
}

// back redirects to the given local path with a flash message.
func back(c *fiber.Ctx, to, flash string) error {
	if flash != "" {
		setFlash(c, flash)
	}
	return c.Redirect(localPath(to, "/"))
}

// localPath accepts only same-site absolute paths.
func localPath(p, fallback string) string {
	if len(p) == 0 || p[0] != '/' || (len(p) > 1 && (p[1] == '/' || p[1] == '\\')) {
		return fallback
	}
	return p
}
