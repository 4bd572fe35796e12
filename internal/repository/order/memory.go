package order

import (
	"context"
	"sort"
	"sync"

	"strawbeary/internal/domain"
)

// Memory keeps orders in process, for tests and database-less runs.
type Memory struct {
	mu     sync.RWMutex
	orders []domain.Order
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Create(_ context.Context, o domain.Order) (*domain.Order, error) {
	o.Items = append([]domain.CartLine{}, o.Items...)
	m.mu.Lock()
	m.orders = append(m.orders, o)
	m.mu.Unlock()
	return &o, nil
}

func (m *Memory) ListBySession(_ context.Context, sessionID string) ([]domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := []domain.Order{}
	for i := len(m.orders) - 1; i >= 0; i-- {
		if m.orders[i].SessionID == sessionID {
			result = append(result, m.orders[i])
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
