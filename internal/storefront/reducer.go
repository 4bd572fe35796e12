// Package storefront is the client side of the cart: a pure reducer over the
// cart value, local persistence, and a best-effort mirror on the server.
package storefront

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"strawbeary/internal/domain"
)

// Cart is the client's authoritative cart. Derived values are computed on read.
type Cart struct {
	Items []domain.CartLine `json:"items"`
}

// Count is the number of units across all lines.
func (c Cart) Count() int {
	return domain.CountItems(c.Items)
}

// Total is the sum of price*quantity across all lines.
func (c Cart) Total() decimal.Decimal {
	return domain.TotalOf(c.Items)
}

func (c Cart) find(dishName string) int {
	for i, item := range c.Items {
		if item.DishName == dishName {
			return i
		}
	}
	return -1
}

func (c Cart) clone() Cart {
	return Cart{Items: append([]domain.CartLine{}, c.Items...)}
}

// Mutation is one user action on the cart.
type Mutation interface {
	apply(Cart) Cart
}

// AddItem adds one unit of Dish, capturing its current price for a new line.
type AddItem struct {
	Dish domain.MenuItem
}

// RemoveItem drops the line for DishName whatever its quantity.
type RemoveItem struct {
	DishName string
}

// SetQuantity sets the quantity of DishName from raw user input.
type SetQuantity struct {
	DishName string
	Raw      string
}

// Clear empties the cart.
type Clear struct{}

// Replace swaps in another full item list, e.g. one restored from the server.
type Replace struct {
	Items []domain.CartLine
}

// Apply returns the cart after m. c is never modified.
func Apply(c Cart, m Mutation) Cart {
	return m.apply(c.clone())
}

func (m AddItem) apply(c Cart) Cart {
	if i := c.find(m.Dish.Name); i >= 0 {
		c.Items[i].Quantity++
		return c
	}
	c.Items = append(c.Items, domain.CartLine{DishName: m.Dish.Name, Price: m.Dish.Price, Quantity: 1})
	return c
}

func (m RemoveItem) apply(c Cart) Cart {
	out := c.Items[:0]
	for _, item := range c.Items {
		if item.DishName != m.DishName {
			out = append(out, item)
		}
	}
	c.Items = out
	return c
}

func (m SetQuantity) apply(c Cart) Cart {
	if i := c.find(m.DishName); i >= 0 {
		c.Items[i].Quantity = CoerceQuantity(m.Raw)
	}
	return c
}

func (Clear) apply(Cart) Cart {
	return Cart{Items: []domain.CartLine{}}
}

func (m Replace) apply(Cart) Cart {
	return Cart{Items: append([]domain.CartLine{}, m.Items...)}
}

// CoerceQuantity turns raw input into a quantity of at least 1. Non-numeric or
// non-finite input becomes 1; fractions are truncated before clamping.
func CoerceQuantity(raw string) int {
	raw = strings.TrimSpace(raw)
	if strings.ContainsRune(raw, '_') {
		return 1
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 1 {
		return 1
	}
	if f >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}
