package order

import (
	"context"

	"strawbeary/internal/domain"
)

// Repository stores immutable orders. There is no update path.
type Repository interface {
	Create(ctx context.Context, order domain.Order) (*domain.Order, error)
	ListBySession(ctx context.Context, sessionID string) ([]domain.Order, error)
}
