package storefront

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strawbeary/internal/domain"
)

type fakeRemote struct {
	mu sync.Mutex

	menu []domain.MenuItem

	pushes      [][]domain.CartLine
	pushErr     error
	pushGate    chan struct{}
	inFlight    int
	maxInFlight int

	serverCart domain.Cart
	getErr     error

	orderCalls int
	orderErr   error
	orderGate  chan struct{}
	keys       []string
}

func (f *fakeRemote) Menu(context.Context) ([]domain.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.menu, nil
}

func (f *fakeRemote) GetCart(_ context.Context, sessionID string) (domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return domain.Cart{}, f.getErr
	}
	c := f.serverCart
	c.SessionID = sessionID
	return c, nil
}

func (f *fakeRemote) PushCart(ctx context.Context, _ string, items []domain.CartLine) error {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	gate := f.pushGate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--
	f.pushes = append(f.pushes, items)
	return f.pushErr
}

func (f *fakeRemote) PlaceOrder(_ context.Context, sessionID string, items []domain.CartLine, total decimal.Decimal, key string) (domain.Order, error) {
	f.mu.Lock()
	f.orderCalls++
	f.keys = append(f.keys, key)
	gate := f.orderGate
	err := f.orderErr
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return domain.Order{}, err
	}
	return domain.Order{ID: "ord-1", SessionID: sessionID, Items: items, Total: total, Status: domain.OrderStatusPending}, nil
}

func (f *fakeRemote) ListOrders(context.Context, string) ([]domain.Order, error) {
	return []domain.Order{}, nil
}

func (f *fakeRemote) lastPush() []domain.CartLine {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pushes) == 0 {
		return nil
	}
	return f.pushes[len(f.pushes)-1]
}

func (f *fakeRemote) pushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pushes)
}

func (f *fakeRemote) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orderCalls
}

func newTestReconciler(t *testing.T, remote *fakeRemote) (*Reconciler, *LocalStore) {
	t.Helper()
	local, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	r := NewReconciler("sess_test", local, remote, Options{PushTimeout: time.Second})
	r.SetMenu([]domain.MenuItem{jam, latte})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = r.Close(ctx)
	})
	return r, local
}

func flush(t *testing.T, r *Reconciler) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, r.Flush(ctx))
}

func TestMutationsPersistLocallyAndConverge(t *testing.T) {
	remote := &fakeRemote{}
	r, local := newTestReconciler(t, remote)

	_, err := r.AddItem("Strawbeary Jam")
	require.NoError(t, err)
	_, err = r.AddItem("Strawbeary Jam")
	require.NoError(t, err)
	_, err = r.AddItem("Strawbeary Latte")
	require.NoError(t, err)
	cart := r.SetQuantity("Strawbeary Latte", "3")

	assert.Equal(t, 5, cart.Count())
	assert.True(t, cart.Total().Equal(decimal.RequireFromString("34.45")), cart.Total().String())
	assert.Equal(t, cart.Items, local.LoadCart())

	flush(t, r)
	assert.Equal(t, cart.Items, remote.lastPush())
}

func TestPushesCoalesceWithOneInFlight(t *testing.T) {
	gate := make(chan struct{})
	remote := &fakeRemote{pushGate: gate}
	r, _ := newTestReconciler(t, remote)

	for i := 0; i < 10; i++ {
		_, err := r.AddItem("Strawbeary Jam")
		require.NoError(t, err)
	}
	close(gate)
	flush(t, r)

	assert.LessOrEqual(t, remote.pushCount(), 2)
	assert.Equal(t, 1, remote.maxInFlight)
	last := remote.lastPush()
	require.Len(t, last, 1)
	assert.Equal(t, 10, last[0].Quantity)
}

func TestPushFailureKeepsLocalState(t *testing.T) {
	remote := &fakeRemote{pushErr: errors.New("connection refused")}
	r, local := newTestReconciler(t, remote)

	_, err := r.AddItem("Strawbeary Jam")
	require.NoError(t, err)
	flush(t, r)

	assert.Equal(t, 1, remote.pushCount())
	assert.Equal(t, 1, r.Count())
	assert.Len(t, local.LoadCart(), 1)
}

func TestAddUnknownDishIsNoop(t *testing.T) {
	remote := &fakeRemote{}
	r, _ := newTestReconciler(t, remote)

	cart, err := r.AddItem("Mystery Dish")
	require.ErrorIs(t, err, ErrUnknownDish)
	assert.Empty(t, cart.Items)

	flush(t, r)
	assert.Zero(t, remote.pushCount())
}

func TestRefreshMenu(t *testing.T) {
	remote := &fakeRemote{menu: []domain.MenuItem{latte}}
	r, _ := newTestReconciler(t, remote)

	require.NoError(t, r.RefreshMenu(context.Background()))
	assert.Equal(t, []domain.MenuItem{latte}, r.Menu())

	_, err := r.AddItem("Strawbeary Jam")
	require.ErrorIs(t, err, ErrUnknownDish)
}

func TestCheckoutClearsCartOnSuccess(t *testing.T) {
	remote := &fakeRemote{}
	r, local := newTestReconciler(t, remote)
	_, err := r.AddItem("Strawbeary Jam")
	require.NoError(t, err)
	_, err = r.AddItem("Strawbeary Jam")
	require.NoError(t, err)

	order, err := r.Checkout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ord-1", order.ID)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("11.98")))
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)

	assert.Zero(t, r.Count())
	assert.Empty(t, local.LoadCart())
	flush(t, r)
	assert.Empty(t, remote.lastPush())
}

func TestCheckoutFailureKeepsCartAndReusesKey(t *testing.T) {
	remote := &fakeRemote{orderErr: &APIError{StatusCode: 500, Message: "Failed to place order"}}
	r, _ := newTestReconciler(t, remote)
	_, err := r.AddItem("Strawbeary Latte")
	require.NoError(t, err)

	_, err = r.Checkout(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreFailure)
	assert.Equal(t, 1, r.Count())

	_, err = r.Checkout(context.Background())
	require.Error(t, err)
	require.Len(t, remote.keys, 2)
	assert.NotEmpty(t, remote.keys[0])
	assert.Equal(t, remote.keys[0], remote.keys[1])

	r.SetQuantity("Strawbeary Latte", "2")
	_, _ = r.Checkout(context.Background())
	require.Len(t, remote.keys, 3)
	assert.NotEqual(t, remote.keys[0], remote.keys[2])
}

func TestCheckoutEmptyCart(t *testing.T) {
	remote := &fakeRemote{}
	r, _ := newTestReconciler(t, remote)

	_, err := r.Checkout(context.Background())
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, remote.calls())
}

func TestConcurrentCheckoutSubmitsOnce(t *testing.T) {
	gate := make(chan struct{})
	remote := &fakeRemote{orderGate: gate}
	r, _ := newTestReconciler(t, remote)
	_, err := r.AddItem("Strawbeary Jam")
	require.NoError(t, err)

	type result struct {
		order domain.Order
		err   error
	}
	results := make(chan result, 5)
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, err := r.Checkout(context.Background())
			results <- result{o, err}
		}()
	}

	require.Eventually(t, func() bool { return remote.calls() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()
	close(results)

	assert.Equal(t, 1, remote.calls())
	for res := range results {
		if res.err != nil {
			assert.ErrorIs(t, res.err, ErrEmptyCart)
			continue
		}
		assert.Equal(t, "ord-1", res.order.ID)
	}
	assert.Zero(t, r.Count())
}

func TestRestoreAdoptsServerCartWhenLocalEmpty(t *testing.T) {
	remote := &fakeRemote{serverCart: domain.Cart{Items: []domain.CartLine{
		{DishName: "Strawbeary Jam", Price: decimal.RequireFromString("5.99"), Quantity: 3},
	}}}
	r, local := newTestReconciler(t, remote)

	cart, err := r.Restore(context.Background())
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, cart.Items, local.LoadCart())
}

func TestRestoreKeepsNonEmptyLocalCart(t *testing.T) {
	remote := &fakeRemote{serverCart: domain.Cart{Items: []domain.CartLine{
		{DishName: "Strawbeary Latte", Price: decimal.RequireFromString("7.49"), Quantity: 1},
	}}}
	r, _ := newTestReconciler(t, remote)
	_, err := r.AddItem("Strawbeary Jam")
	require.NoError(t, err)

	cart, err := r.Restore(context.Background())
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "Strawbeary Jam", cart.Items[0].DishName)
}

func TestRestoreErrorLeavesCartUntouched(t *testing.T) {
	remote := &fakeRemote{getErr: errors.New("offline")}
	r, _ := newTestReconciler(t, remote)

	cart, err := r.Restore(context.Background())
	require.Error(t, err)
	assert.Empty(t, cart.Items)
}

func TestReconcilerLoadsLocalCart(t *testing.T) {
	dir := t.TempDir()
	local, err := NewLocalStore(dir)
	require.NoError(t, err)
	require.NoError(t, local.SaveCart([]domain.CartLine{{DishName: "Strawbeary Jam", Price: decimal.RequireFromString("5.99"), Quantity: 4}}))

	r := NewReconciler("sess_x", local, &fakeRemote{}, Options{})
	defer r.Close(context.Background())
	assert.Equal(t, 4, r.Count())
}

func TestCheckoutKeyPersistsUntilCartChanges(t *testing.T) {
	remote := &fakeRemote{orderErr: errors.New("timeout")}
	r, local := newTestReconciler(t, remote)
	_, err := r.AddItem("Strawbeary Jam")
	require.NoError(t, err)

	_, err = r.Checkout(context.Background())
	require.Error(t, err)
	require.Len(t, remote.keys, 1)
	assert.Equal(t, remote.keys[0], local.PendingCheckout())

	reopened := NewReconciler("sess_test", local, remote, Options{})
	defer reopened.Close(context.Background())
	_, _ = reopened.Checkout(context.Background())
	require.Len(t, remote.keys, 2)
	assert.Equal(t, remote.keys[0], remote.keys[1])

	reopened.SetQuantity("Strawbeary Jam", "2")
	assert.Empty(t, local.PendingCheckout())
}

func TestCheckoutDuplicateMeansAlreadyPlaced(t *testing.T) {
	remote := &fakeRemote{orderErr: &APIError{StatusCode: 409, Message: "Duplicate request"}}
	r, local := newTestReconciler(t, remote)
	_, err := r.AddItem("Strawbeary Latte")
	require.NoError(t, err)

	_, err = r.Checkout(context.Background())
	require.ErrorIs(t, err, ErrAlreadyPlaced)
	assert.Zero(t, r.Count())
	assert.Empty(t, local.LoadCart())
	assert.Empty(t, local.PendingCheckout())
}

func TestCheckoutClearsMutationsMadeInFlight(t *testing.T) {
	gate := make(chan struct{})
	remote := &fakeRemote{orderGate: gate}
	r, _ := newTestReconciler(t, remote)
	_, err := r.AddItem("Strawbeary Jam")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := r.Checkout(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool { return remote.calls() == 1 }, time.Second, time.Millisecond)

	_, err = r.AddItem("Strawbeary Latte")
	require.NoError(t, err)
	close(gate)
	require.NoError(t, <-done)

	assert.Zero(t, r.Count())
	require.Len(t, remote.keys, 1)
}
