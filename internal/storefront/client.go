package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"strawbeary/internal/domain"
)

// APIError is a non-2xx response from the storefront API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("storefront api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("storefront api: status %d: %s", e.StatusCode, e.Message)
}

// Is maps status codes onto the domain sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case domain.ErrDuplicateRequest:
		return e.StatusCode == http.StatusConflict
	case domain.ErrInvalidPayload:
		return e.StatusCode == http.StatusBadRequest
	case domain.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case domain.ErrStoreFailure:
		return e.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// Client talks to the storefront HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for baseURL, e.g. "http://localhost:5000/api".
// A nil hc gets a client with a 10s timeout.
func NewClient(baseURL string, hc *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q", baseURL)
	}
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: u.String(), http: hc}, nil
}

func (c *Client) Menu(ctx context.Context) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	if err := c.do(ctx, http.MethodGet, "/menu", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) GetCart(ctx context.Context, sessionID string) (domain.Cart, error) {
	var cart domain.Cart
	if err := c.do(ctx, http.MethodGet, "/cart/"+url.PathEscape(sessionID), nil, nil, &cart); err != nil {
		return domain.Cart{}, err
	}
	if cart.Items == nil {
		cart.Items = []domain.CartLine{}
	}
	return cart, nil
}

func (c *Client) PushCart(ctx context.Context, sessionID string, items []domain.CartLine) error {
	if items == nil {
		items = []domain.CartLine{}
	}
	body := struct {
		SessionID string            `json:"sessionId"`
		Items     []domain.CartLine `json:"items"`
	}{sessionID, items}
	return c.do(ctx, http.MethodPost, "/cart", nil, body, nil)
}

func (c *Client) PlaceOrder(ctx context.Context, sessionID string, items []domain.CartLine, total decimal.Decimal, idempotencyKey string) (domain.Order, error) {
	body := struct {
		SessionID string            `json:"sessionId"`
		Items     []domain.CartLine `json:"items"`
		Total     decimal.Decimal   `json:"total"`
	}{sessionID, items, total}

	header := http.Header{}
	if idempotencyKey != "" {
		header.Set("Idempotency-Key", idempotencyKey)
	}

	var order domain.Order
	if err := c.do(ctx, http.MethodPost, "/orders", header, body, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (c *Client) ListOrders(ctx context.Context, sessionID string) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(sessionID), nil, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) do(ctx context.Context, method, path string, header http.Header, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
		}
		if b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16)); err == nil && json.Unmarshal(b, &payload) == nil {
			apiErr.Message = payload.Message
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
