package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"bazaar/internal/domain"
	applog "bazaar/internal/log"
	"bazaar/internal/services"
)

type SellerHandler struct {
	Sellers *services.SellerService
	Catalog *services.CatalogService
	Orders  *services.OrderService
}

// GET /seller
func (h *SellerHandler) Dashboard(c *fiber.Ctx) error {
	d, err := h.Sellers.Dashboard(c.UserContext(), viewerOf(c))
	if err != nil {
		return loadFailed(c, err, "Could not load your dashboard. Please retry.")
	}
	return render(c, "seller_dashboard", fiber.Map{"Dash": d})
}

// GET /seller/products
func (h *SellerHandler) Products(c *fiber.Ctx) error {
	products, err := h.Sellers.Products(c.UserContext(), viewerOf(c))
	if err != nil {
		return loadFailed(c, err, "Could not load your products. Please retry.")
	}
	return render(c, "seller_products", fiber.Map{"Products": products})
}

func formOf(c *fiber.Ctx) services.ProductForm {
	return services.ProductForm{
		Name:            c.FormValue("name"),
		Description:     c.FormValue("description"),
		Price:           c.FormValue("price"),
		Type:            c.FormValue("type"),
		Stock:           c.FormValue("stock"),
		Unlimited:       c.FormValue("unlimited") != "",
		PreviewImageURL: c.FormValue("previewImageUrl"),
	}
}

func formFrom(p domain.Product) services.ProductForm {
	stock := ""
	if !p.Unlimited && !p.IsDigital() {
		stock = strconv.Itoa(p.Stock)
	}
	return services.ProductForm{
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price.StringFixed(2),
		Type:            p.Type,
		Stock:           stock,
		Unlimited:       p.Unlimited,
		PreviewImageURL: p.PreviewImageURL,
	}
}

// productFailed re-renders the product form inline for validation errors.
func productFailed(c *fiber.Ctx, action string, err error, data fiber.Map) error {
	var fe *services.FieldError
	if errors.As(err, &fe) {
		applog.Security(c, "validation.fail", map[string]any{"field": fe.Field})
		data["Err"], data["Field"] = fe.Message, fe.Field
		return renderStatus(c, fiber.StatusBadRequest, "seller_product_form", data)
	}
	if isClientError(err) {
		data["Err"] = messageFor(err, "Could not save the product.")
		return renderStatus(c, fiber.StatusBadRequest, "seller_product_form", data)
	}
	return actionFailed(c, action, err, "/seller/products", "Could not save the product. Please try again.")
}

// GET /seller/products/new
func (h *SellerHandler) NewProduct(c *fiber.Ctx) error {
	return render(c, "seller_product_form", fiber.Map{"Form": services.ProductForm{Type: domain.ProductPhysical}})
}

// POST /seller/products
func (h *SellerHandler) CreateProduct(c *fiber.Ctx) error {
	f := formOf(c)
	p, err := h.Sellers.CreateProduct(c.UserContext(), viewerOf(c), f)
	if err != nil {
		return productFailed(c, "seller.product.create", err, fiber.Map{"Form": f})
	}
	applog.Audit(c, "seller.product.create", map[string]any{"product": p.ID})
	return c.Redirect("/seller/products?notice=saved")
}

// ownProduct loads a product the viewer may edit.
func (h *SellerHandler) ownProduct(c *fiber.Ctx) (domain.Product, error) {
	v := viewerOf(c)
	p, err := h.Catalog.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return p, err
	}
	if p.SellerID != v.UserID() && !v.User.IsAdmin() {
		applog.Security(c, "access.denied.product", map[string]any{"product": p.ID})
		return p, &PageError{Status: fiber.StatusNotFound, Message: "Product not found"}
	}
	return p, nil
}

// GET /seller/products/:id/edit
func (h *SellerHandler) EditProduct(c *fiber.Ctx) error {
	p, err := h.ownProduct(c)
	if err != nil {
		return loadFailed(c, err, "Product not found")
	}
	return render(c, "seller_product_form", fiber.Map{"ID": p.ID, "Form": formFrom(p)})
}

// POST /seller/products/:id
func (h *SellerHandler) UpdateProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	f := formOf(c)
	if _, err := h.Sellers.UpdateProduct(c.UserContext(), viewerOf(c), id, f); err != nil {
		return productFailed(c, "seller.product.update", err, fiber.Map{"ID": id, "Form": f})
	}
	applog.Audit(c, "seller.product.update", map[string]any{"product": id})
	return c.Redirect("/seller/products?notice=saved")
}

// POST /seller/products/:id/delete
func (h *SellerHandler) DeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Sellers.DeleteProduct(c.UserContext(), viewerOf(c), id); err != nil {
		return actionFailed(c, "seller.product.delete", err, "/seller/products", "Could not delete the product.")
	}
	applog.Audit(c, "seller.product.delete", map[string]any{"product": id})
	return c.Redirect("/seller/products?notice=deleted")
}

// GET /seller/orders
func (h *SellerHandler) OrdersPage(c *fiber.Ctx) error {
	orders, err := h.Orders.SellerOrders(c.UserContext(), viewerOf(c))
	if err != nil {
		return loadFailed(c, err, "Could not load orders. Please retry.")
	}
	return render(c, "seller_orders", fiber.Map{"Orders": orders, "Statuses": domain.OrderStatuses})
}

// POST /seller/orders/:id/status
func (h *SellerHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	status := c.FormValue("status")
	if _, err := h.Orders.UpdateStatus(c.UserContext(), viewerOf(c), id, status); err != nil {
		return actionFailed(c, "seller.orders.update", err, "/seller/orders", "Could not update the order.")
	}
	applog.Audit(c, "seller.orders.update", map[string]any{"order_id": id, "status": status})
	return c.Redirect("/seller/orders")
}

// GET /seller/profile
func (h *SellerHandler) Profile(c *fiber.Ctx) error {
	p, err := h.Sellers.Profile(c.UserContext(), viewerOf(c))
	if err != nil {
		return loadFailed(c, err, "Could not load your shop profile. Please retry.")
	}
	return render(c, "seller_profile", fiber.Map{"Profile": p})
}

// POST /seller/profile
func (h *SellerHandler) SaveProfile(c *fiber.Ctx) error {
	shop, bio := c.FormValue("shopName"), c.FormValue("bio")
	p, err := h.Sellers.UpdateProfile(c.UserContext(), viewerOf(c), shop, bio)
	if err != nil {
		var fe *services.FieldError
		if errors.As(err, &fe) {
			form := domain.SellerProfile{ShopName: shop, Bio: bio}
			return renderStatus(c, fiber.StatusBadRequest, "seller_profile", fiber.Map{"Profile": form, "Err": fe.Message, "Field": fe.Field})
		}
		return actionFailed(c, "seller.profile.update", err, "/seller/profile", "Could not save your profile.")
	}
	applog.Audit(c, "seller.profile.update", map[string]any{"shop": p.ShopName})
	return c.Redirect("/seller/profile?notice=saved")
}
