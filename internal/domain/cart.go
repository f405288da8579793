package domain

import "github.com/shopspring/decimal"

type CartItem struct {
	ProductID      string          `json:"productId"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	Quantity       int             `json:"quantity"`
	PriceSnapshot  decimal.Decimal `json:"priceSnapshot"`
	CurrentPrice   decimal.Decimal `json:"currentPrice"`
	AvailableStock int             `json:"availableStock"` // -1 when unlimited
}

func (it CartItem) IsDigital() bool { return it.Type == ProductDigital }

// PriceChanged reports whether the live price moved since the item was added.
func (it CartItem) PriceChanged() bool { return !it.PriceSnapshot.Equal(it.CurrentPrice) }

// HasStock reports whether the requested quantity can be fulfilled.
func (it CartItem) HasStock() bool {
	if it.IsDigital() || it.AvailableStock < 0 {
		return true
	}
	return it.AvailableStock >= it.Quantity
}

func (it CartItem) Subtotal() decimal.Decimal {
	return it.CurrentPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

type Cart struct {
	Items []CartItem `json:"items"`
}

func (c Cart) Empty() bool { return len(c.Items) == 0 }

func (c Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// DigitalOnly is true when every line item is a digital product.
func (c Cart) DigitalOnly() bool {
	if c.Empty() {
		return false
	}
	for _, it := range c.Items {
		if !it.IsDigital() {
			return false
		}
	}
	return true
}
