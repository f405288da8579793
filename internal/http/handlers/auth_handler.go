package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"bazaar/internal/api"
	"bazaar/internal/log"
	"bazaar/internal/services"
	"bazaar/internal/validate"
)

type AuthHandler struct {
	Auth         *services.AuthService
	SecureCookie bool
}

// ensureSID returns the browser's session id, minting a fresh one when
// absent. A new id is issued at login so a pre-login sid is never reused.
func (h *AuthHandler) ensureSID(c *fiber.Ctx, rotate bool) string {
	sid := c.Cookies("sid")
	if sid == "" || rotate {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   h.SecureCookie,
		})
	}
	return sid
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	if viewerOf(c).LoggedIn() {
		return c.Redirect("/")
	}
	return render(c, "login", fiber.Map{"Email": "", "Next": localPath(c.Query("next"), "")})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.FormValue("email"))
	pass := c.FormValue("password")
	next := localPath(c.FormValue("next"), "/")
	if _, ok := validate.Email(email); !ok || pass == "" {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_format"})
		return renderStatus(c, fiber.StatusBadRequest, "login", fiber.Map{"Err": "Enter your email and password", "Email": email, "Next": next})
	}

	old := c.Cookies("sid")
	sid := h.ensureSID(c, true)
	u, err := h.Auth.Login(c.UserContext(), sid, email, pass)
	if err != nil {
		status := fiber.StatusUnauthorized
		msg := "Invalid email or password"
		if !errors.Is(err, services.ErrBadCreds) {
			var ae *api.Error
			if errors.As(err, &ae) {
				status = ae.Status
			} else {
				status = fiber.StatusBadGateway
			}
			msg = api.UserMessage(err, "Could not log in right now. Please try again.")
		}
		log.Security(c, "auth.login.fail", map[string]any{"email": email})
		return renderStatus(c, status, "login", fiber.Map{"Err": msg, "Email": email, "Next": next})
	}
	if old != "" && old != sid {
		_ = h.Auth.Logout(old)
	}
	c.Locals("userID", u.ID)
	log.Audit(c, "auth.login.success", map[string]any{"email": email, "role": u.Role})
	return c.Redirect(next)
}

func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return render(c, "register", fiber.Map{"Form": fiber.Map{"Name": "", "Email": "", "Role": "BUYER"}})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	reg := api.Registration{
		Name:     c.FormValue("name"),
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
		Role:     c.FormValue("role"),
	}
	form := fiber.Map{"Name": reg.Name, "Email": reg.Email, "Role": strings.ToUpper(reg.Role)}
	if reg.Password != c.FormValue("confirm") {
		return renderStatus(c, fiber.StatusBadRequest, "register", fiber.Map{"Form": form, "Err": "Passwords do not match", "Field": "confirm"})
	}
	sid := h.ensureSID(c, true)
	u, err := h.Auth.Register(c.UserContext(), sid, reg)
	if err != nil {
		var fe *services.FieldError
		if errors.As(err, &fe) {
			log.Security(c, "validation.fail", map[string]any{"field": fe.Field})
			return renderStatus(c, fiber.StatusBadRequest, "register", fiber.Map{"Form": form, "Err": fe.Message, "Field": fe.Field})
		}
		return renderStatus(c, fiber.StatusBadRequest, "register", fiber.Map{"Form": form, "Err": api.UserMessage(err, "Could not create your account. Please try again.")})
	}
	c.Locals("userID", u.ID)
	log.Audit(c, "auth.register", map[string]any{"email": u.Email, "role": u.Role})
	return c.Redirect("/?notice=registered")
}

func (h *AuthHandler) ResetForm(c *fiber.Ctx) error {
	return render(c, "password_reset", fiber.Map{"Email": ""})
}

// ResetRequest always answers the same way so the page cannot be used to
// discover which addresses have accounts.
func (h *AuthHandler) ResetRequest(c *fiber.Ctx) error {
	email := c.FormValue("email")
	err := h.Auth.ResetPassword(c.UserContext(), email)
	var fe *services.FieldError
	if errors.As(err, &fe) {
		return renderStatus(c, fiber.StatusBadRequest, "password_reset", fiber.Map{"Err": fe.Message, "Email": email})
	}
	if err != nil {
		log.Error(c, "auth.reset.fail", err, nil)
	} else {
		log.Audit(c, "auth.reset.request", map[string]any{"email": email})
	}
	return c.Redirect("/login?notice=reset-sent")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := c.Cookies("sid")
	if sid != "" {
		_ = h.Auth.Logout(sid)
	}
	clearSID(c)
	log.Audit(c, "auth.logout", nil)
	return c.Redirect("/login?notice=logged-out")
}
