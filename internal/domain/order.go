package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderCompleted  = "completed"
	OrderCancelled  = "cancelled"
)

// OrderStatuses is the set the seller UI offers; the backend decides legality.
var OrderStatuses = []string{OrderPending, OrderProcessing, OrderShipped, OrderCompleted, OrderCancelled}

// DigitalDeliveryMarker replaces the postal address on digital-only orders.
const DigitalDeliveryMarker = "DIGITAL_DELIVERY"

type OrderItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func (it OrderItem) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

type Order struct {
	ID              string          `json:"id"`
	BuyerID         string          `json:"buyerId"`
	BuyerName       string          `json:"buyerName,omitempty"`
	Status          string          `json:"status"`
	Items           []OrderItem     `json:"items"`
	Total           decimal.Decimal `json:"total"`
	ShippingAddress string          `json:"shippingAddress"`
	CreatedAt       time.Time       `json:"createdAt"`
}

func (o Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

func (o Order) IsDigital() bool { return o.ShippingAddress == DigitalDeliveryMarker }

type Payment struct {
	CardNumber string `json:"cardNumber"`
	CardHolder string `json:"cardHolder"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
}

// PlaceOrder is the body sent to the backend at checkout.
type PlaceOrder struct {
	ShippingAddress string  `json:"shippingAddress"`
	Payment         Payment `json:"payment"`
}
