// Package pricing validates an order request against a catalog snapshot and
// computes its price. It is pure: nothing here touches the network or the
// database, so every failure happens before any order state exists.
package pricing

import (
	"github.com/shopspring/decimal"

	"swifteats/internal/catalog"
	"swifteats/internal/domain"
)

var (
	TaxRate     = decimal.NewFromFloat(0.05)
	DeliveryFee = decimal.NewFromInt(30)
)

const (
	minLines    = 1
	maxLines    = 20
	minQuantity = 1
	maxQuantity = 5
)

type Line struct {
	ItemID   int64
	Quantity int
}

// Quote is the priced result of a validated request. Prices come only from
// the fetched menu, never from client input.
type Quote struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	Items    []domain.OrderItem
}

// ValidateLines checks request shape only; it needs no catalog data.
func ValidateLines(lines []Line) error {
	if len(lines) < minLines || len(lines) > maxLines {
		return domain.Validationf("Provide %d..%d order lines.", minLines, maxLines)
	}
	for _, l := range lines {
		if l.Quantity < minQuantity || l.Quantity > maxQuantity {
			return domain.Validationf("Each line quantity must be %d..%d.", minQuantity, maxQuantity)
		}
	}
	return nil
}

// ValidateRestaurant checks that the fetched restaurant can take this order.
func ValidateRestaurant(r *catalog.Restaurant, city string) error {
	if !r.IsOpen {
		return &domain.ValidationError{Detail: "Restaurant is closed"}
	}
	if r.City != city {
		return &domain.ValidationError{Detail: "Delivery city must match restaurant city"}
	}
	return nil
}

// Price checks each line against the menu and computes subtotal, tax and total
// with 2-decimal rounding.
func Price(menu []catalog.MenuItem, lines []Line) (*Quote, error) {
	byID := make(map[int64]catalog.MenuItem, len(menu))
	for _, mi := range menu {
		byID[mi.ItemID] = mi
	}

	subtotal := decimal.Zero
	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		mi, ok := byID[l.ItemID]
		if !ok || !mi.IsAvailable {
			return nil, domain.Validationf("Item %d not available", l.ItemID)
		}
		subtotal = subtotal.Add(mi.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		items = append(items, domain.OrderItem{
			ItemID:   l.ItemID,
			Quantity: l.Quantity,
			Price:    mi.Price,
		})
	}

	tax := subtotal.Mul(TaxRate).Round(2)
	total := subtotal.Add(tax).Add(DeliveryFee).Round(2)
	return &Quote{Subtotal: subtotal, Tax: tax, Total: total, Items: items}, nil
}
