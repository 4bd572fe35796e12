package order

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
	return &postgresRepo{pool: pool, logger: logger.OrNop(l).Named("order_repo")}
}

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	const q = `
INSERT INTO orders (id, session_id, items, total, status)
VALUES ($1, $2, $3, $4::numeric, $5)
RETURNING id::text, session_id, items, total::text, status, created_at
`
	row := r.pool.QueryRow(ctx, q, o.ID, o.SessionID, o.Items, o.Total.String(), string(o.Status))
	created, err := scanOrder(row)
	if err != nil {
		r.logger.Error("create order", zap.String("session_id", o.SessionID), zap.Error(err))
		return nil, fmt.Errorf("%w: create order: %v", domain.ErrStoreFailure, err)
	}
	r.logger.Info("created order", zap.String("id", created.ID), zap.String("session_id", created.SessionID))
	return created, nil
}

func (r *postgresRepo) ListBySession(ctx context.Context, sessionID string) ([]domain.Order, error) {
	const q = `
SELECT id::text, session_id, items, total::text, status, created_at
FROM orders
WHERE session_id = $1
ORDER BY created_at DESC, id DESC
`
	rows, err := r.pool.Query(ctx, q, sessionID)
	if err != nil {
		r.logger.Error("list orders", zap.String("session_id", sessionID), zap.Error(err))
		return nil, fmt.Errorf("%w: list orders: %v", domain.ErrStoreFailure, err)
	}
	defer rows.Close()

	result := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan order: %v", domain.ErrStoreFailure, err)
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list orders: %v", domain.ErrStoreFailure, err)
	}
	return result, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o      domain.Order
		total  string
		status string
	)
	if err := row.Scan(&o.ID, &o.SessionID, &o.Items, &total, &status, &o.CreatedAt); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("parse total %q: %w", total, err)
	}
	o.Total = amount
	o.Status = domain.OrderStatus(status)
	if o.Items == nil {
		o.Items = []domain.CartLine{}
	}
	return &o, nil
}
