package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bazaar/internal/services"
)

type ProductHandler struct {
	Catalog   *services.CatalogService
	Inventory *services.InventoryService
	Favorites *services.FavoritesService
}

// Home lists the catalogue one page at a time.
func (h *ProductHandler) Home(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	res, err := h.Catalog.Home(c.UserContext(), page)
	if err != nil {
		return loadFailed(c, err, "Could not load products. Please retry.")
	}
	pages := (res.Total + services.PageSize - 1) / services.PageSize
	return render(c, "home", fiber.Map{
		"Products": res.Items,
		"Page":     page,
		"Pages":    pages,
		"Prev":     page - 1,
		"Next":     nextPage(page, pages),
	})
}

func nextPage(page, pages int) int {
	if page >= pages {
		return 0
	}
	return page + 1
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	p, err := h.Catalog.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return loadFailed(c, err, "This item is no longer available")
	}
	data := fiber.Map{"P": p, "Avail": h.Inventory.Availability(p)}
	if v := viewerOf(c); v.LoggedIn() {
		data["Own"] = p.SellerID == v.UserID()
		// favourite state is decoration; a failure just hides it
		if favs, err := h.Favorites.List(c.UserContext(), v); err == nil {
			for _, f := range favs {
				if f.ProductID == p.ID {
					data["Favorite"] = true
				}
			}
		}
	}
	return render(c, "product", data)
}
