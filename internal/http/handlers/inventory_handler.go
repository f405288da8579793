package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"bazaar/internal/api"
	"bazaar/internal/services"
	"bazaar/internal/validate"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

// Check answers GET /api/v1/availability?productId= with the stock label.
func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.Query("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing or invalid productId"})
	}
	avail, err := h.Inv.CheckAvailability(c.UserContext(), productID)
	if errors.Is(err, api.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": api.UserMessage(err, "availability unavailable, retry soon")})
	}
	return c.JSON(avail)
}
