package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"strawbeary/internal/domain"
)

type Service struct {
	repo     cartRepo
	validate *validator.Validate
}

type cartRepo interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Upsert(ctx context.Context, sessionID string, items []domain.CartLine) (*domain.Cart, error)
}

func New(repo cartRepo) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

type SaveInput struct {
	SessionID string            `json:"sessionId"`
	Items     []domain.CartLine `json:"items"`
}

// Get returns the mirrored cart; a session that never saved one gets an empty cart.
func (s *Service) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, domain.NewValidationError("sessionId", "sessionId is required")
	}
	return s.repo.Get(ctx, sessionID)
}

// Save replaces the session's cart with in.Items. Items are the client's full state, never a delta.
func (s *Service) Save(ctx context.Context, in SaveInput) (*domain.Cart, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, domain.NewValidationError("sessionId", "sessionId is required")
	}
	if err := ValidateLines(s.validate, in.Items); err != nil {
		return nil, err
	}
	return s.repo.Upsert(ctx, sessionID, in.Items)
}

// ValidateLines checks every line and the one-line-per-dish rule.
func ValidateLines(v *validator.Validate, items []domain.CartLine) error {
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		if err := v.Struct(item); err != nil {
			return &domain.ValidationError{
				Field:   fmt.Sprintf("items[%d]", i),
				Message: fmt.Sprintf("items[%d] is invalid: dishName is required and quantity must be at least 1", i),
				Err:     err,
			}
		}
		if item.Price.IsNegative() {
			return domain.NewValidationError(fmt.Sprintf("items[%d].price", i), fmt.Sprintf("items[%d].price must not be negative", i))
		}
		if _, dup := seen[item.DishName]; dup {
			return domain.NewValidationError(fmt.Sprintf("items[%d].dishName", i), fmt.Sprintf("duplicate line for %q", item.DishName))
		}
		seen[item.DishName] = struct{}{}
	}
	return nil
}
