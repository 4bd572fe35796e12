package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"strawbeary/internal/domain"
)

type MenuWriter interface {
	Upsert(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error)
}

type dishSeed struct {
	Name        string
	Description string
	Price       string
	ImageURL    string
	Category    string
}

var dishes = []dishSeed{
	{"Strawbeary Jam", "A jammy dessert of fresh strawberries with a hint of mint.", "5.99", "/images/cake.png", "dessert"},
	{"Strawbeary Delight", "Layers of strawberries, cream and fluffy cake.", "6.49", "/images/cakeslice.webp", "dessert"},
	{"Strawbeary Combo", "Three flavors of the signature cupcakes in one combo.", "24.99", "/images/threecake.png", "dessert"},
	{"Strawbeary Sparkle", "Strawberries and sparkling water with fresh mint.", "12.99", "/images/drink.png", "drink"},
	{"Strawbeary Juice", "Fresh strawberry juice with a hint of mint.", "6.99", "/images/drink2.webp", "drink"},
	{"Strawbeary Latte", "A creamy latte with fresh strawberries, milk and honey.", "7.49", "/images/latte.webp", "drink"},
}

// Apply upserts the demo menu. It is idempotent: dishes are matched by name.
func Apply(ctx context.Context, menu MenuWriter) ([]domain.MenuItem, error) {
	seeded := make([]domain.MenuItem, 0, len(dishes))
	for _, d := range dishes {
		item, err := menu.Upsert(ctx, domain.MenuItem{
			Name:        d.Name,
			Description: d.Description,
			Price:       decimal.RequireFromString(d.Price),
			ImageURL:    d.ImageURL,
			IsAvailable: true,
			Category:    d.Category,
		})
		if err != nil {
			return seeded, fmt.Errorf("upsert dish %s: %w", d.Name, err)
		}
		seeded = append(seeded, *item)
	}
	return seeded, nil
}
