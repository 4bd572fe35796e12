package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"strawbeary/internal/domain"
	"strawbeary/internal/logger"
	cartsvc "strawbeary/internal/service/cart"
)

type orderRepo interface {
	Create(ctx context.Context, order domain.Order) (*domain.Order, error)
	ListBySession(ctx context.Context, sessionID string) ([]domain.Order, error)
}

type idempotencyStore interface {
	MarkNew(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Forget(ctx context.Context, key string) error
}

type Service struct {
	repo     orderRepo
	keys     idempotencyStore
	keyTTL   time.Duration
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// New builds the order committer. keys may be nil, in which case idempotency keys are ignored.
func New(repo orderRepo, keys idempotencyStore, keyTTL time.Duration, l *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		keys:     keys,
		keyTTL:   keyTTL,
		validate: validator.New(),
		logger:   logger.OrNop(l).Named("order_service"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

type PlaceInput struct {
	SessionID      string
	Items          []domain.CartLine
	Total          decimal.Decimal
	IdempotencyKey string
}

// PlaceOrder persists a pending order from a cart snapshot. Total is taken as sent by
// the client and is not recomputed from the items.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceInput) (*domain.Order, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, invalid("sessionId", "sessionId is required", nil)
	}
	if len(in.Items) == 0 {
		return nil, invalid("items", "items must not be empty", nil)
	}
	if in.Total.IsNegative() {
		return nil, invalid("total", "total must not be negative", nil)
	}
	if err := cartsvc.ValidateLines(s.validate, in.Items); err != nil {
		return nil, invalid("items", err.Error(), err)
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" && s.keys != nil {
		scoped := sessionID + ":" + key
		fresh, err := s.keys.MarkNew(ctx, scoped, s.keyTTL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
		}
		if !fresh {
			s.logger.Info("duplicate checkout", zap.String("session_id", sessionID), zap.String("key", key))
			return nil, domain.ErrDuplicateRequest
		}
		order, err := s.create(ctx, sessionID, in)
		if err != nil {
			// the order was not written, so a retry with the same key must be allowed
			if ferr := s.keys.Forget(context.WithoutCancel(ctx), scoped); ferr != nil {
				s.logger.Warn("release idempotency key", zap.String("key", key), zap.Error(ferr))
			}
			return nil, err
		}
		return order, nil
	}
	return s.create(ctx, sessionID, in)
}

func (s *Service) create(ctx context.Context, sessionID string, in PlaceInput) (*domain.Order, error) {
	items := make([]domain.CartLine, len(in.Items))
	copy(items, in.Items)

	return s.repo.Create(ctx, domain.Order{
		ID:        s.newID(),
		SessionID: sessionID,
		Items:     items,
		Total:     in.Total,
		Status:    domain.OrderStatusPending,
		CreatedAt: s.now().UTC(),
	})
}

// ListOrders returns every order of the session, newest first.
func (s *Service) ListOrders(ctx context.Context, sessionID string) ([]domain.Order, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, invalid("sessionId", "sessionId is required", nil)
	}
	return s.repo.ListBySession(ctx, sessionID)
}

func invalid(field, msg string, cause error) error {
	err := domain.ErrInvalidPayload
	if cause != nil {
		err = errors.Join(domain.ErrInvalidPayload, cause)
	}
	return &domain.ValidationError{Field: field, Message: msg, Err: err}
}
