package cart

import (
	"context"
	"sync"
	"time"

	"strawbeary/internal/domain"
)

// Memory is a process-local Store, used by tests and the memory cart backend.
type Memory struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{carts: make(map[string]domain.Cart), now: time.Now}
}

func (m *Memory) Get(_ context.Context, sessionID string) (*domain.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cart, ok := m.carts[sessionID]
	if !ok {
		return domain.EmptyCart(sessionID), nil
	}
	return cloneCart(cart), nil
}

func (m *Memory) Upsert(_ context.Context, sessionID string, items []domain.CartLine) (*domain.Cart, error) {
	now := m.now().UTC()
	cart := domain.Cart{
		SessionID: sessionID,
		Items:     append([]domain.CartLine{}, items...),
		UpdatedAt: &now,
	}
	m.mu.Lock()
	m.carts[sessionID] = cart
	m.mu.Unlock()
	return cloneCart(cart), nil
}

func cloneCart(c domain.Cart) *domain.Cart {
	c.Items = append([]domain.CartLine{}, c.Items...)
	return &c
}
