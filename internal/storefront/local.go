package storefront

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"strawbeary/internal/domain"
)

const (
	CartKey     = "strawbeary_cart"
	SessionKey  = "STRAWBEARY_SESSION_ID"
	CheckoutKey = "strawbeary_checkout"
)

// LocalStore keeps client state as one JSON file per key under a directory.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("state directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// LoadCart returns the saved items. Missing, unreadable or invalid content yields
// an empty cart.
func (s *LocalStore) LoadCart() []domain.CartLine {
	var items []domain.CartLine
	if !s.read(CartKey, &items) || !wellFormed(items) {
		return []domain.CartLine{}
	}
	return items
}

func (s *LocalStore) SaveCart(items []domain.CartLine) error {
	if items == nil {
		items = []domain.CartLine{}
	}
	return s.write(CartKey, items)
}

// PendingCheckout returns the idempotency key of the last unconfirmed checkout,
// or "" when there is none.
func (s *LocalStore) PendingCheckout() string {
	var key string
	if !s.read(CheckoutKey, &key) {
		return ""
	}
	return strings.TrimSpace(key)
}

// SavePendingCheckout records key for retries. An empty key removes the record.
func (s *LocalStore) SavePendingCheckout(key string) error {
	if key == "" {
		if err := os.Remove(s.path(CheckoutKey)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", CheckoutKey, err)
		}
		return nil
	}
	return s.write(CheckoutKey, key)
}

// SessionID returns the persisted session id, generating and saving one on first use.
func (s *LocalStore) SessionID() (string, error) {
	var id string
	if s.read(SessionKey, &id) && strings.TrimSpace(id) != "" {
		return id, nil
	}
	id = NewSessionID()
	if err := s.write(SessionKey, id); err != nil {
		return "", err
	}
	return id, nil
}

// NewSessionID returns an opaque "sess_" token.
func NewSessionID() string {
	return "sess_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *LocalStore) read(key string, v any) bool {
	b, err := os.ReadFile(s.path(key))
	if err != nil {
		return false
	}
	return json.Unmarshal(b, v) == nil
}

func (s *LocalStore) write(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func wellFormed(items []domain.CartLine) bool {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.DishName) == "" || item.Quantity < 1 || item.Price.IsNegative() {
			return false
		}
		if _, dup := seen[item.DishName]; dup {
			return false
		}
		seen[item.DishName] = struct{}{}
	}
	return true
}
