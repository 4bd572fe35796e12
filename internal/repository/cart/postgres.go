package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"strawbeary/internal/domain"
	"strawbeary/internal/logger"
)

type postgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, l *zap.Logger) Store {
	return &postgresStore{pool: pool, logger: logger.OrNop(l).Named("cart_repo")}
}

func (r *postgresStore) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	const q = `
SELECT session_id, items, updated_at
FROM carts
WHERE session_id = $1
`
	var (
		cart      domain.Cart
		updatedAt time.Time
	)
	err := r.pool.QueryRow(ctx, q, sessionID).Scan(&cart.SessionID, &cart.Items, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.EmptyCart(sessionID), nil
		}
		r.logger.Error("get cart", zap.String("session_id", sessionID), zap.Error(err))
		return nil, fmt.Errorf("%w: get cart: %v", domain.ErrStoreFailure, err)
	}
	cart.Items = normalize(cart.Items)
	cart.UpdatedAt = &updatedAt
	return &cart, nil
}

// Upsert is a single INSERT .. ON CONFLICT statement; concurrent writers for one
// session serialize on the row and the last applied payload wins whole.
func (r *postgresStore) Upsert(ctx context.Context, sessionID string, items []domain.CartLine) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (session_id, items)
VALUES ($1, $2)
ON CONFLICT (session_id) DO UPDATE SET
    items = EXCLUDED.items,
    updated_at = now()
RETURNING session_id, items, updated_at
`
	var (
		cart      domain.Cart
		updatedAt time.Time
	)
	err := r.pool.QueryRow(ctx, q, sessionID, normalize(items)).Scan(&cart.SessionID, &cart.Items, &updatedAt)
	if err != nil {
		r.logger.Error("upsert cart", zap.String("session_id", sessionID), zap.Error(err))
		return nil, fmt.Errorf("%w: upsert cart: %v", domain.ErrStoreFailure, err)
	}
	cart.Items = normalize(cart.Items)
	cart.UpdatedAt = &updatedAt
	r.logger.Debug("upserted cart", zap.String("session_id", sessionID), zap.Int("lines", len(cart.Items)))
	return &cart, nil
}
