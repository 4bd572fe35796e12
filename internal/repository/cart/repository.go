package cart

import (
	"context"

	"strawbeary/internal/domain"
)

// Store persists exactly one cart per session.
type Store interface {
	// Get returns the stored cart, or an empty cart when the session has none.
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	// Upsert atomically replaces the session's items, creating the cart if absent.
	Upsert(ctx context.Context, sessionID string, items []domain.CartLine) (*domain.Cart, error)
}

func normalize(items []domain.CartLine) []domain.CartLine {
	if items == nil {
		return []domain.CartLine{}
	}
	return items
}
