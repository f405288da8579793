package services

import (
	"context"

	"bazaar/internal/domain"
)

const (
	StockInStock    = "IN_STOCK"
	StockLow        = "LOW_STOCK"
	StockOut        = "OUT_OF_STOCK"
	StockUnlimited  = "UNLIMITED"
	defaultLowStock = 5
)

type InventoryService struct {
	Products ProductBackend
	LowStock int
}

func NewInventoryService(products ProductBackend) *InventoryService {
	return &InventoryService{Products: products, LowStock: defaultLowStock}
}

// Availability converts a product's stock fields to a display label.
func (s *InventoryService) Availability(p domain.Product) domain.Availability {
	qty := p.AvailableStock()
	if qty < 0 {
		return domain.Availability{Status: StockUnlimited}
	}
	low := s.LowStock
	if low <= 0 {
		low = defaultLowStock
	}
	status := StockOut
	switch {
	case qty >= low:
		status = StockInStock
	case qty > 0:
		status = StockLow
	}
	return domain.Availability{Status: status, Qty: qty}
}

func (s *InventoryService) CheckAvailability(ctx context.Context, productID string) (domain.Availability, error) {
	p, err := s.Products.Get(ctx, productID)
	if err != nil {
		return domain.Availability{}, err
	}
	return s.Availability(p), nil
}
