package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"bazaar/internal/log"
	"bazaar/internal/services"
)

type SearchHandler struct {
	Catalog *services.CatalogService
}

func (h *SearchHandler) Search(c *fiber.Ctx) error {
	rawQ := c.Query("q")
	if strings.TrimSpace(rawQ) == "" {
		// initial page load: empty search without errors
		return render(c, "search", fiber.Map{"Q": "", "Products": nil, "Count": 0})
	}
	products, err := h.Catalog.Search(c.UserContext(), rawQ)
	if errors.Is(err, services.ErrInvalidQuery) {
		log.Security(c, "validation.fail", map[string]any{"field": "q"})
		return renderStatus(c, fiber.StatusBadRequest, "search", fiber.Map{
			"Q": "", "Products": nil, "Count": 0, "Err": "Enter a valid keyword (letters and numbers only)",
		})
	}
	if err != nil {
		return loadFailed(c, err, "Could not load results. Please retry.")
	}
	return render(c, "search", fiber.Map{"Q": strings.TrimSpace(rawQ), "Products": products, "Count": len(products)})
}
