package menu

import (
	"context"

	"strawbeary/internal/domain"
)

type Repository interface {
	ListAvailable(ctx context.Context) ([]domain.MenuItem, error)
	Create(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error)
	Upsert(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error)
}
