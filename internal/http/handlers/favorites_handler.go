package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "bazaar/internal/log"
	"bazaar/internal/services"
)

type FavoritesHandler struct {
	Favorites *services.FavoritesService
}

func (h *FavoritesHandler) List(c *fiber.Ctx) error {
	favs, err := h.Favorites.List(c.UserContext(), viewerOf(c))
	if err != nil {
		return loadFailed(c, err, "Could not load favorites. Please retry.")
	}
	return render(c, "favorites", fiber.Map{"Favorites": favs})
}

func (h *FavoritesHandler) Save(c *fiber.Ctx) error {
	pid := c.FormValue("productId")
	if err := h.Favorites.Add(c.UserContext(), viewerOf(c), pid); err != nil {
		return actionFailed(c, "favorites.add", err, "/product/"+pid, "Could not save to favorites.")
	}
	applog.Audit(c, "favorites.add", map[string]any{"product": pid})
	return c.Redirect("/favorites")
}

func (h *FavoritesHandler) Unsave(c *fiber.Ctx) error {
	pid := c.FormValue("productId")
	if err := h.Favorites.Remove(c.UserContext(), viewerOf(c), pid); err != nil {
		return actionFailed(c, "favorites.remove", err, "/favorites", "Could not remove from favorites.")
	}
	applog.Audit(c, "favorites.remove", map[string]any{"product": pid})
	return c.Redirect("/favorites")
}
