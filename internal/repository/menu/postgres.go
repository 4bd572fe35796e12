package menu

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"strawbeary/internal/domain"
	"strawbeary/internal/logger"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, l *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger.OrNop(l).Named("menu_repo")}
}

const menuColumns = `id::text, name, description, price::text, image_url, is_available, category, created_at`

func (r *postgresRepo) ListAvailable(ctx context.Context) ([]domain.MenuItem, error) {
	const q = `
SELECT ` + menuColumns + `
FROM menu_items
WHERE is_available
ORDER BY name ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Error("list menu", zap.Error(err))
		return nil, fmt.Errorf("%w: list menu: %v", domain.ErrStoreFailure, err)
	}
	defer rows.Close()

	result := []domain.MenuItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan menu item: %v", domain.ErrStoreFailure, err)
		}
		result = append(result, *item)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("list menu rows", zap.Error(err))
		return nil, fmt.Errorf("%w: list menu: %v", domain.ErrStoreFailure, err)
	}
	r.logger.Debug("listed menu", zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) Create(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error) {
	const q = `
INSERT INTO menu_items (name, description, price, image_url, is_available, category)
VALUES ($1, $2, $3::numeric, $4, $5, $6)
RETURNING ` + menuColumns
	created, err := scanItem(r.pool.QueryRow(ctx, q,
		item.Name, item.Description, item.Price.String(), item.ImageURL, item.IsAvailable, item.Category,
	))
	if err != nil {
		r.logger.Error("create menu item", zap.String("name", item.Name), zap.Error(err))
		return nil, fmt.Errorf("%w: create menu item: %v", domain.ErrStoreFailure, err)
	}
	return created, nil
}

// Upsert keys menu items by name, the same key carts use for lines.
func (r *postgresRepo) Upsert(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error) {
	const q = `
INSERT INTO menu_items (name, description, price, image_url, is_available, category)
VALUES ($1, $2, $3::numeric, $4, $5, $6)
ON CONFLICT (name) DO UPDATE SET
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    image_url = EXCLUDED.image_url,
    is_available = EXCLUDED.is_available,
    category = EXCLUDED.category,
    updated_at = now()
RETURNING ` + menuColumns
	saved, err := scanItem(r.pool.QueryRow(ctx, q,
		item.Name, item.Description, item.Price.String(), item.ImageURL, item.IsAvailable, item.Category,
	))
	if err != nil {
		r.logger.Error("upsert menu item", zap.String("name", item.Name), zap.Error(err))
		return nil, fmt.Errorf("%w: upsert menu item: %v", domain.ErrStoreFailure, err)
	}
	r.logger.Info("upserted menu item", zap.String("name", saved.Name), zap.String("id", saved.ID))
	return saved, nil
}

func scanItem(row pgx.Row) (*domain.MenuItem, error) {
	var (
		item  domain.MenuItem
		price string
	)
	if err := row.Scan(&item.ID, &item.Name, &item.Description, &price, &item.ImageURL, &item.IsAvailable, &item.Category, &item.CreatedAt); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	item.Price = amount
	return &item, nil
}
