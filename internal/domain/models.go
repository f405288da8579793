package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ProductDigital  = "DIGITAL"
	ProductPhysical = "PHYSICAL"
)

type Product struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Type            string          `json:"type"` // DIGITAL | PHYSICAL
	Stock           int             `json:"stock"`
	Reserved        int             `json:"reserved"`
	Unlimited       bool            `json:"unlimited"`
	SellerID        string          `json:"sellerId"`
	SellerName      string          `json:"sellerName,omitempty"`
	PreviewImageURL string          `json:"previewImageUrl,omitempty"`
	CreatedAt       time.Time       `json:"createdAt,omitempty"`
}

func (p Product) IsDigital() bool { return p.Type == ProductDigital }

// AvailableStock is on-hand minus reserved. Digital and unlimited products
// report -1, meaning no finite limit.
func (p Product) AvailableStock() int {
	if p.IsDigital() || p.Unlimited {
		return -1
	}
	if n := p.Stock - p.Reserved; n > 0 {
		return n
	}
	return 0
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK | UNLIMITED
	Qty    int    `json:"qty,omitempty"`
}

type ProductPage struct {
	Items []Product `json:"items"`
	Page  int       `json:"page"`
	Total int       `json:"total"`
}

// ProductInput is the seller-editable subset of a product.
type ProductInput struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Type            string          `json:"type"`
	Stock           int             `json:"stock"`
	Unlimited       bool            `json:"unlimited"`
	PreviewImageURL string          `json:"previewImageUrl,omitempty"`
}

type Favorite struct {
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	Product   Product   `json:"product"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

type SellerProfile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ShopName  string    `json:"shopName"`
	Bio       string    `json:"bio"`
	Products  []Product `json:"products,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type SellerDashboard struct {
	ProductCount  int             `json:"productCount"`
	PendingOrders int             `json:"pendingOrders"`
	TotalOrders   int             `json:"totalOrders"`
	Revenue       decimal.Decimal `json:"revenue"`
}

type DashboardStats struct {
	Users    int             `json:"users"`
	Sellers  int             `json:"sellers"`
	Products int             `json:"products"`
	Orders   int             `json:"orders"`
	Banned   int             `json:"banned"`
	Revenue  decimal.Decimal `json:"revenue"`
}
