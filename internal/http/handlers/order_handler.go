package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"bazaar/internal/api"
	"bazaar/internal/domain"
	applog "bazaar/internal/log"
	"bazaar/internal/services"
)

type OrderHandler struct {
	Cart  *services.CartService
	Order *services.OrderService
}

func checkoutForm(c *fiber.Ctx) services.CheckoutRequest {
	return services.CheckoutRequest{
		ShippingAddress: c.FormValue("address"),
		Payment: domain.Payment{
			CardNumber: c.FormValue("cardNumber"),
			CardHolder: c.FormValue("cardHolder"),
			Expiry:     c.FormValue("expiry"),
			CVV:        c.FormValue("cvv"),
		},
	}
}

func checkoutData(cart domain.Cart, req services.CheckoutRequest) fiber.Map {
	var short []domain.CartItem
	for _, it := range cart.Items {
		if !it.HasStock() {
			short = append(short, it)
		}
	}
	return fiber.Map{
		"Cart":    cart,
		"Digital": cart.DigitalOnly(),
		"Short":   short,
		// card digits are never echoed back
		"Form": fiber.Map{"Address": req.ShippingAddress, "CardHolder": req.Payment.CardHolder, "Expiry": req.Payment.Expiry},
	}
}

func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	cart, err := h.Cart.Refresh(c.UserContext(), viewerOf(c))
	if err != nil {
		return loadFailed(c, err, "Could not load your cart. Please retry.")
	}
	if cart.Empty() {
		return c.Redirect("/cart?notice=empty-cart")
	}
	return render(c, "checkout", checkoutData(cart, services.CheckoutRequest{}))
}

func (h *OrderHandler) Place(c *fiber.Ctx) error {
	v := viewerOf(c)
	req := checkoutForm(c)
	o, err := h.Order.PlaceFromCart(c.UserContext(), v, req)
	if err == nil {
		applog.Audit(c, "order.place", map[string]any{
			"order_id": o.ID,
			"total":    o.Total.StringFixed(2),
			"items":    o.ItemCount(),
			"digital":  o.IsDigital(),
		})
		return c.Redirect("/order/" + o.ID)
	}

	switch {
	case errors.Is(err, api.ErrUnauthorized), errors.Is(err, services.ErrLoginRequired):
		return err
	case errors.Is(err, services.ErrEmptyCart):
		return c.Redirect("/cart?notice=empty-cart")
	}

	status := fiber.StatusBadRequest
	field := ""
	var se *services.InsufficientStockError
	var ae *api.Error
	switch {
	case errors.As(err, &se):
		field = "cart"
	case errors.Is(err, services.ErrAddressRequired):
		field = "address"
	case errors.Is(err, services.ErrInvalidCard):
		field = "cardNumber"
	case errors.As(err, &ae):
		status = ae.Status
		if status >= 500 {
			status = fiber.StatusBadGateway
		}
	default:
		status = fiber.StatusBadGateway
	}
	if status >= 500 {
		applog.Error(c, "order.place.fail", err, nil)
	} else {
		applog.Security(c, "order.place.rejected", map[string]any{"reason": err.Error()})
	}

	cart, _ := h.Cart.View(c.UserContext(), v)
	data := checkoutData(cart, req)
	data["Err"] = messageFor(err, "Could not place your order. Please try again.")
	data["Field"] = field
	return renderStatus(c, status, "checkout", data)
}

// View shows an order confirmation. The backend only returns orders the
// caller may see, so ownership is enforced there.
func (h *OrderHandler) View(c *fiber.Ctx) error {
	o, err := h.Order.Get(c.UserContext(), viewerOf(c), c.Params("id"))
	if err != nil {
		if errors.Is(err, api.ErrNotFound) || errors.Is(err, api.ErrForbidden) {
			applog.Security(c, "access.denied.order", map[string]any{"order_id": c.Params("id")})
		}
		return loadFailed(c, err, "Order not found")
	}
	return render(c, "order", fiber.Map{"Order": o})
}

// History lists orders for the current logged-in user.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	orders, err := h.Order.History(c.UserContext(), viewerOf(c))
	if err != nil {
		return loadFailed(c, err, "Could not load orders. Please retry.")
	}
	return render(c, "orders", fiber.Map{"Orders": orders})
}
