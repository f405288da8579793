package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bazaar/internal/services"
)

type ShopHandler struct {
	Catalog *services.CatalogService
}

func (h *ShopHandler) List(c *fiber.Ctx) error {
	shops, err := h.Catalog.Shops(c.UserContext())
	if err != nil {
		return loadFailed(c, err, "Could not load shops. Please retry.")
	}
	return render(c, "shops", fiber.Map{"Shops": shops})
}

func (h *ShopHandler) Detail(c *fiber.Ctx) error {
	shop, err := h.Catalog.Shop(c.UserContext(), c.Params("id"))
	if err != nil {
		return loadFailed(c, err, "Shop not found")
	}
	return render(c, "shop", fiber.Map{"Shop": shop, "Mine": shop.UserID == viewerOf(c).UserID()})
}
