package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "bazaar/internal/log"
	"bazaar/internal/services"
)

type AdminHandler struct {
	Admin *services.AdminService
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.Admin.Stats(c.UserContext(), viewerOf(c))
	if err != nil {
		return loadFailed(c, err, "Could not load statistics. Please retry.")
	}
	return render(c, "admin_dashboard", fiber.Map{"Stats": stats})
}

// GET /admin/users
func (h *AdminHandler) UsersPage(c *fiber.Ctx) error {
	users, err := h.Admin.Users(c.UserContext(), viewerOf(c))
	if err != nil {
		return loadFailed(c, err, "Could not load users. Please retry.")
	}
	return render(c, "admin_users", fiber.Map{"Users": users})
}

func (h *AdminHandler) setBanned(c *fiber.Ctx, banned bool) error {
	id := c.Params("id")
	action := "admin.users.unban"
	if banned {
		action = "admin.users.ban"
	}
	users, err := h.Admin.SetBanned(c.UserContext(), viewerOf(c), id, banned)
	if err != nil {
		return actionFailed(c, action, err, "/admin/users", "Could not update the user.")
	}
	applog.Audit(c, action, map[string]any{"target_user": id})
	// render the refreshed list straight away so the change is visible
	return render(c, "admin_users", fiber.Map{"Users": users, "Notice": "Saved."})
}

// POST /admin/users/:id/ban
func (h *AdminHandler) Ban(c *fiber.Ctx) error { return h.setBanned(c, true) }

// POST /admin/users/:id/unban
func (h *AdminHandler) Unban(c *fiber.Ctx) error { return h.setBanned(c, false) }
