package menu

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"strawbeary/internal/domain"
	menurepo "strawbeary/internal/repository/menu"
)

type Service struct {
	repo menurepo.Repository
}

func New(repo menurepo.Repository) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	ImageURL    string           `json:"imageURL"`
	IsAvailable *bool            `json:"isAvailable"`
	Category    string           `json:"category"`
}

// List returns available dishes sorted by name.
func (s *Service) List(ctx context.Context) ([]domain.MenuItem, error) {
	return s.repo.ListAvailable(ctx)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.MenuItem, error) {
	item, err := in.toItem()
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, item)
}

func (in CreateInput) toItem() (domain.MenuItem, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.MenuItem{}, domain.NewValidationError("name", "name is required")
	}
	if in.Price == nil {
		return domain.MenuItem{}, domain.NewValidationError("price", "price is required")
	}
	if in.Price.IsNegative() {
		return domain.MenuItem{}, domain.NewValidationError("price", "price must not be negative")
	}
	available := true
	if in.IsAvailable != nil {
		available = *in.IsAvailable
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = domain.DefaultMenuCategory
	}
	return domain.MenuItem{
		Name:        name,
		Description: in.Description,
		Price:       *in.Price,
		ImageURL:    in.ImageURL,
		IsAvailable: available,
		Category:    category,
	}, nil
}
