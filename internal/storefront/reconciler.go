package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"strawbeary/internal/domain"
	"strawbeary/internal/logger"
)

var (
	ErrEmptyCart   = errors.New("cart is empty")
	ErrUnknownDish = errors.New("dish is not on the menu")
	// ErrAlreadyPlaced reports a checkout the server had already committed under
	// the same idempotency key. The cart is cleared when it is returned.
	ErrAlreadyPlaced = errors.New("order was already placed")
)

// Remote is the server side the Reconciler mirrors to and checks out against.
type Remote interface {
	Menu(ctx context.Context) ([]domain.MenuItem, error)
	GetCart(ctx context.Context, sessionID string) (domain.Cart, error)
	PushCart(ctx context.Context, sessionID string, items []domain.CartLine) error
	PlaceOrder(ctx context.Context, sessionID string, items []domain.CartLine, total decimal.Decimal, idempotencyKey string) (domain.Order, error)
	ListOrders(ctx context.Context, sessionID string) ([]domain.Order, error)
}

// CartStorage persists the cart and the pending checkout key on the client.
type CartStorage interface {
	LoadCart() []domain.CartLine
	SaveCart(items []domain.CartLine) error
	PendingCheckout() string
	SavePendingCheckout(key string) error
}

type Options struct {
	// PushTimeout bounds each background cart push. Defaults to 10s.
	PushTimeout time.Duration
	Logger      *zap.Logger
}

// Reconciler owns one session's cart. Mutations update local state synchronously
// and mirror the full cart to the server in the background.
type Reconciler struct {
	sessionID string
	local     CartStorage
	remote    Remote
	logger    *zap.Logger
	pushes    *pushQueue
	checkout  singleflight.Group

	mu       sync.Mutex
	cart     Cart
	menu     []domain.MenuItem
	orderKey string
}

func NewReconciler(sessionID string, local CartStorage, remote Remote, opts Options) *Reconciler {
	if opts.PushTimeout <= 0 {
		opts.PushTimeout = 10 * time.Second
	}
	l := logger.OrNop(opts.Logger).Named("cart_reconciler").With(zap.String("session_id", sessionID))

	r := &Reconciler{
		sessionID: sessionID,
		local:     local,
		remote:    remote,
		logger:    l,
		cart:      Cart{Items: local.LoadCart()},
		orderKey:  local.PendingCheckout(),
	}
	r.pushes = newPushQueue(func(ctx context.Context, items []domain.CartLine) error {
		return remote.PushCart(ctx, sessionID, items)
	}, opts.PushTimeout, l)
	return r
}

func (r *Reconciler) SessionID() string {
	return r.sessionID
}

// Cart returns a copy of the current cart.
func (r *Reconciler) Cart() Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cart.clone()
}

func (r *Reconciler) Count() int {
	return r.Cart().Count()
}

func (r *Reconciler) Total() decimal.Decimal {
	return r.Cart().Total()
}

// Menu returns the last fetched menu snapshot.
func (r *Reconciler) Menu() []domain.MenuItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.MenuItem{}, r.menu...)
}

// SetMenu replaces the menu snapshot AddItem resolves dishes against.
func (r *Reconciler) SetMenu(items []domain.MenuItem) {
	r.mu.Lock()
	r.menu = append([]domain.MenuItem{}, items...)
	r.mu.Unlock()
}

func (r *Reconciler) RefreshMenu(ctx context.Context) error {
	items, err := r.remote.Menu(ctx)
	if err != nil {
		return fmt.Errorf("fetch menu: %w", err)
	}
	r.SetMenu(items)
	return nil
}

// AddItem adds one unit of the named dish. ErrUnknownDish leaves the cart untouched.
func (r *Reconciler) AddItem(dishName string) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, dish := range r.menu {
		if dish.Name == dishName {
			return r.dispatchLocked(AddItem{Dish: dish}), nil
		}
	}
	return r.cart.clone(), fmt.Errorf("%w: %q", ErrUnknownDish, dishName)
}

func (r *Reconciler) RemoveItem(dishName string) Cart {
	return r.dispatch(RemoveItem{DishName: dishName})
}

func (r *Reconciler) SetQuantity(dishName, raw string) Cart {
	return r.dispatch(SetQuantity{DishName: dishName, Raw: raw})
}

func (r *Reconciler) Clear() Cart {
	return r.dispatch(Clear{})
}

// Restore adopts the server copy when the local cart is empty. Errors leave the
// local cart as it was.
func (r *Reconciler) Restore(ctx context.Context) (Cart, error) {
	if r.Count() > 0 {
		return r.Cart(), nil
	}
	remote, err := r.remote.GetCart(ctx, r.sessionID)
	if err != nil {
		return r.Cart(), fmt.Errorf("fetch cart: %w", err)
	}
	if len(remote.Items) == 0 || !wellFormed(remote.Items) {
		return r.Cart(), nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.cart.Items) > 0 {
		return r.cart.clone(), nil
	}
	return r.dispatchLocked(Replace{Items: remote.Items}), nil
}

// Checkout submits the current cart as an order and clears the cart on success.
// Concurrent calls share one submission. A failed checkout keeps the cart and
// a retry of the same cart reuses the idempotency key, across restarts too.
// A 409 for that key means an earlier attempt was committed: the cart is
// cleared and ErrAlreadyPlaced is returned. On success the live cart is
// cleared, so mutations made while the order is in flight are dropped.
func (r *Reconciler) Checkout(ctx context.Context) (domain.Order, error) {
	v, err, _ := r.checkout.Do("checkout", func() (interface{}, error) {
		r.mu.Lock()
		snapshot := r.cart.clone()
		if len(snapshot.Items) == 0 {
			r.mu.Unlock()
			return domain.Order{}, ErrEmptyCart
		}
		if r.orderKey == "" {
			r.orderKey = uuid.NewString()
			if err := r.local.SavePendingCheckout(r.orderKey); err != nil {
				r.logger.Error("failed to save checkout key locally", zap.Error(err))
			}
		}
		key := r.orderKey
		r.mu.Unlock()

		order, err := r.remote.PlaceOrder(ctx, r.sessionID, snapshot.Items, snapshot.Total(), key)
		if errors.Is(err, domain.ErrDuplicateRequest) {
			r.logger.Info("order already placed for checkout key", zap.String("idempotency_key", key))
			r.dispatch(Clear{})
			return domain.Order{}, ErrAlreadyPlaced
		}
		if err != nil {
			r.logger.Warn("checkout failed", zap.Error(err))
			return domain.Order{}, fmt.Errorf("place order: %w", err)
		}
		r.dispatch(Clear{})
		r.logger.Info("order placed", zap.String("order_id", order.ID))
		return order, nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return v.(domain.Order), nil
}

func (r *Reconciler) Orders(ctx context.Context) ([]domain.Order, error) {
	orders, err := r.remote.ListOrders(ctx, r.sessionID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Flush waits for queued cart pushes to finish.
func (r *Reconciler) Flush(ctx context.Context) error {
	return r.pushes.flush(ctx)
}

// Close flushes pending pushes within ctx and stops the background pusher. The
// Reconciler must not be mutated afterwards.
func (r *Reconciler) Close(ctx context.Context) error {
	err := r.Flush(ctx)
	r.pushes.close()
	return err
}

func (r *Reconciler) dispatch(m Mutation) Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dispatchLocked(m)
}

func (r *Reconciler) dispatchLocked(m Mutation) Cart {
	r.cart = Apply(r.cart, m)
	if r.orderKey != "" {
		r.orderKey = ""
		if err := r.local.SavePendingCheckout(""); err != nil {
			r.logger.Error("failed to drop checkout key locally", zap.Error(err))
		}
	}
	r.persistLocked()
	return r.cart.clone()
}

// persistLocked writes the cart locally and queues the server push.
func (r *Reconciler) persistLocked() {
	if err := r.local.SaveCart(r.cart.Items); err != nil {
		r.logger.Error("failed to save cart locally", zap.Error(err))
	}
	r.pushes.enqueue(r.cart.clone().Items)
}
