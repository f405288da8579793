package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "bazaar/internal/log"
	"bazaar/internal/services"
	"bazaar/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

// View always re-fetches so price and stock changes show up.
func (h *CartHandler) View(c *fiber.Ctx) error {
	cart, err := h.Cart.Refresh(c.UserContext(), viewerOf(c))
	if err != nil {
		return loadFailed(c, err, "Could not load your cart. Please retry.")
	}
	return render(c, "cart", fiber.Map{"Cart": cart})
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	productID := c.FormValue("productId")
	qty := validate.Qty(c.FormValue("qty"))
	_, err := h.Cart.Add(c.UserContext(), viewerOf(c), productID, qty)
	if err != nil {
		return actionFailed(c, "cart.add", err, "/product/"+productID, "Could not add to cart. Please try again.")
	}
	applog.Audit(c, "cart.add", map[string]any{"product": productID, "qty": qty})
	return c.Redirect("/cart?notice=added")
}

func (h *CartHandler) Update(c *fiber.Ctx) error {
	productID := c.FormValue("productId")
	qty := c.FormValue("qty")
	n := 0
	if qty != "0" {
		n = validate.Qty(qty)
	}
	if _, err := h.Cart.Update(c.UserContext(), viewerOf(c), productID, n); err != nil {
		return actionFailed(c, "cart.update", err, "/cart", "Could not update your cart.")
	}
	applog.Audit(c, "cart.update", map[string]any{"product": productID, "qty": n})
	return c.Redirect("/cart")
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	productID := c.FormValue("productId")
	if _, err := h.Cart.Remove(c.UserContext(), viewerOf(c), productID); err != nil {
		return actionFailed(c, "cart.remove", err, "/cart", "Could not remove the item.")
	}
	applog.Audit(c, "cart.remove", map[string]any{"product": productID})
	return c.Redirect("/cart")
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	if _, err := h.Cart.Clear(c.UserContext(), viewerOf(c)); err != nil {
		return actionFailed(c, "cart.clear", err, "/cart", "Could not clear your cart.")
	}
	applog.Audit(c, "cart.clear", nil)
	return c.Redirect("/cart")
}
