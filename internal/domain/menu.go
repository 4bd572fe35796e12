package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultMenuCategory = "General"

// MenuItem is a dish on the catalog.
type MenuItem struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageURL"`
	IsAvailable bool            `json:"isAvailable"`
	Category    string          `json:"category"`
	CreatedAt   time.Time       `json:"createdAt"`
}
