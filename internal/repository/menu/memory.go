package menu

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"strawbeary/internal/domain"
)

// Memory is an in-process catalog keyed by dish name.
type Memory struct {
	mu    sync.RWMutex
	items map[string]domain.MenuItem
}

func NewMemory(items ...domain.MenuItem) *Memory {
	m := &Memory{items: make(map[string]domain.MenuItem)}
	for _, item := range items {
		_, _ = m.Upsert(context.Background(), item)
	}
	return m
}

func (m *Memory) ListAvailable(_ context.Context) ([]domain.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := []domain.MenuItem{}
	for _, item := range m.items {
		if item.IsAvailable {
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *Memory) Create(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error) {
	m.mu.RLock()
	_, exists := m.items[item.Name]
	m.mu.RUnlock()
	if exists {
		return nil, domain.NewValidationError("name", "name already exists")
	}
	return m.Upsert(ctx, item)
}

func (m *Memory) Upsert(_ context.Context, item domain.MenuItem) (*domain.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.items[item.Name]; ok {
		item.ID = prev.ID
		item.CreatedAt = prev.CreatedAt
	} else if item.ID == "" {
		item.ID = uuid.NewString()
	}
	m.items[item.Name] = item
	return &item, nil
}
