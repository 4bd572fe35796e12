package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"strawbeary/internal/domain"
	"strawbeary/internal/logger"
)

const defaultRedisKeyPrefix = "strawbeary:cart:"

type redisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	logger    *zap.Logger
}

// NewRedis stores each cart as one JSON value; SET replaces it whole.
func NewRedis(client redis.UniversalClient, keyPrefix string, l *zap.Logger) Store {
	if keyPrefix == "" {
		keyPrefix = defaultRedisKeyPrefix
	}
	return &redisStore{client: client, keyPrefix: keyPrefix, logger: logger.OrNop(l).Named("cart_redis")}
}

func (r *redisStore) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	raw, err := r.client.Get(ctx, r.keyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.EmptyCart(sessionID), nil
		}
		r.logger.Error("get cart", zap.String("session_id", sessionID), zap.Error(err))
		return nil, fmt.Errorf("%w: get cart: %v", domain.ErrStoreFailure, err)
	}
	var cart domain.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		r.logger.Warn("discarding unreadable cart", zap.String("session_id", sessionID), zap.Error(err))
		return domain.EmptyCart(sessionID), nil
	}
	cart.SessionID = sessionID
	cart.Items = normalize(cart.Items)
	return &cart, nil
}

func (r *redisStore) Upsert(ctx context.Context, sessionID string, items []domain.CartLine) (*domain.Cart, error) {
	now := time.Now().UTC()
	cart := domain.Cart{SessionID: sessionID, Items: normalize(items), UpdatedAt: &now}
	raw, err := json.Marshal(cart)
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}
	if err := r.client.Set(ctx, r.keyPrefix+sessionID, raw, 0).Err(); err != nil {
		r.logger.Error("upsert cart", zap.String("session_id", sessionID), zap.Error(err))
		return nil, fmt.Errorf("%w: upsert cart: %v", domain.ErrStoreFailure, err)
	}
	return &cart, nil
}
