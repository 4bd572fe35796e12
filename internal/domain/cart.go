package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, matching the menu and order payloads.
	decimal.MarshalJSONWithoutQuotes = true
}

// CartLine is a denormalized copy of a dish's name and price plus a quantity.
// DishName is unique within a cart.
type CartLine struct {
	DishName string          `json:"dishName" validate:"required"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" validate:"gte=1"`
}

// Subtotal is price times quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the server-side mirror of a session's cart.
type Cart struct {
	SessionID string     `json:"sessionId"`
	Items     []CartLine `json:"items"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// EmptyCart is what a session without a stored cart reads as.
func EmptyCart(sessionID string) *Cart {
	return &Cart{SessionID: sessionID, Items: []CartLine{}}
}

// CountItems sums line quantities.
func CountItems(items []CartLine) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}

// TotalOf sums price*quantity over items.
func TotalOf(items []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}
