package services

import (
	"context"
	"strings"

	"golang.org/x/sync/singleflight"

	"bazaar/internal/domain"
	"bazaar/internal/validate"
)

type CheckoutRequest struct {
	ShippingAddress string
	Payment         domain.Payment
}

type OrderService struct {
	API   OrderBackend
	Carts *CartService

	inflight singleflight.Group
}

func NewOrderService(b OrderBackend, carts *CartService) *OrderService {
	return &OrderService{API: b, Carts: carts}
}

// Precheck applies the checkout gate to a cart and builds the request body.
// Checks run in order: empty cart, stock per line, address, card.
func Precheck(cart domain.Cart, req CheckoutRequest) (domain.PlaceOrder, error) {
	if cart.Empty() {
		return domain.PlaceOrder{}, ErrEmptyCart
	}
	for _, it := range cart.Items {
		if !it.HasStock() {
			return domain.PlaceOrder{}, &InsufficientStockError{
				ProductID: it.ProductID,
				Name:      it.Name,
				Requested: it.Quantity,
				Available: it.AvailableStock,
			}
		}
	}

	body := domain.PlaceOrder{Payment: req.Payment}
	if cart.DigitalOnly() {
		body.ShippingAddress = domain.DigitalDeliveryMarker
	} else {
		addr, ok := validate.Address(req.ShippingAddress)
		if !ok {
			return domain.PlaceOrder{}, ErrAddressRequired
		}
		body.ShippingAddress = addr
	}

	digits, ok := validate.CardNumber(req.Payment.CardNumber)
	if !ok {
		return domain.PlaceOrder{}, ErrInvalidCard
	}
	body.Payment.CardNumber = digits
	body.Payment.CardHolder = strings.TrimSpace(body.Payment.CardHolder)
	return body, nil
}

// PlaceFromCart validates the viewer's current cart and submits the order.
// Concurrent submissions from the same session share one backend call.
func (s *OrderService) PlaceFromCart(ctx context.Context, v Viewer, req CheckoutRequest) (domain.Order, error) {
	if !v.LoggedIn() {
		return domain.Order{}, ErrLoginRequired
	}
	cart, err := s.Carts.Refresh(ctx, v)
	if err != nil {
		return domain.Order{}, err
	}
	body, err := Precheck(cart, req)
	if err != nil {
		return domain.Order{}, err
	}

	res, err, _ := s.inflight.Do("checkout:"+v.SID, func() (any, error) {
		return s.API.Place(ctx, v.Token, body)
	})
	if err != nil {
		return domain.Order{}, err
	}
	// the backend empties the cart on success
	_, _ = s.Carts.Refresh(ctx, v)
	return res.(domain.Order), nil
}

func (s *OrderService) Get(ctx context.Context, v Viewer, id string) (domain.Order, error) {
	if !v.LoggedIn() {
		return domain.Order{}, ErrLoginRequired
	}
	id, ok := validate.ID(id)
	if !ok {
		return domain.Order{}, ErrInvalidID
	}
	return s.API.Get(ctx, v.Token, id)
}

func (s *OrderService) History(ctx context.Context, v Viewer) ([]domain.Order, error) {
	if !v.LoggedIn() {
		return nil, ErrLoginRequired
	}
	return s.API.List(ctx, v.Token)
}

func (s *OrderService) SellerOrders(ctx context.Context, v Viewer) ([]domain.Order, error) {
	if !v.User.IsSeller() {
		return nil, ErrForbidden
	}
	return s.API.SellerList(ctx, v.Token)
}

func (s *OrderService) UpdateStatus(ctx context.Context, v Viewer, id, status string) (domain.Order, error) {
	if !v.User.IsSeller() {
		return domain.Order{}, ErrForbidden
	}
	id, ok := validate.ID(id)
	if !ok {
		return domain.Order{}, ErrInvalidID
	}
	status, ok = validate.OneOf(strings.ToLower(status), domain.OrderStatuses)
	if !ok {
		return domain.Order{}, fieldErr("status", "Unknown order status.")
	}
	return s.API.UpdateStatus(ctx, v.Token, id, status)
}
