package storefront

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"strawbeary/internal/domain"
)

type pushFunc func(ctx context.Context, items []domain.CartLine) error

// pushQueue mirrors cart states to the server on one goroutine. Only the newest
// pending state is kept and at most one push is in flight.
type pushQueue struct {
	push    pushFunc
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	pending []domain.CartLine
	queued  bool
	busy    bool
	idle    chan struct{} // closed when nothing is queued or in flight

	wake    chan struct{}
	stop    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func newPushQueue(push pushFunc, timeout time.Duration, l *zap.Logger) *pushQueue {
	idle := make(chan struct{})
	close(idle)
	q := &pushQueue{
		push:    push,
		timeout: timeout,
		logger:  l,
		idle:    idle,
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *pushQueue) enqueue(items []domain.CartLine) {
	q.mu.Lock()
	if !q.queued && !q.busy {
		q.idle = make(chan struct{})
	}
	q.pending = items
	q.queued = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// flush waits until every queued state has been pushed or dropped.
func (q *pushQueue) flush(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *pushQueue) close() {
	q.once.Do(func() { close(q.stop) })
	<-q.stopped
}

func (q *pushQueue) run() {
	defer close(q.stopped)
	for {
		select {
		case <-q.stop:
			return
		case <-q.wake:
		}
		for q.next() {
		}
	}
}

// next sends the newest pending state, if any, and reports whether it did.
func (q *pushQueue) next() bool {
	q.mu.Lock()
	if !q.queued {
		if q.busy {
			q.busy = false
			close(q.idle)
		}
		q.mu.Unlock()
		return false
	}
	items := q.pending
	q.pending, q.queued, q.busy = nil, false, true
	q.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	if err := q.push(ctx, items); err != nil {
		q.logger.Warn("failed to sync cart with server", zap.Int("lines", len(items)), zap.Error(err))
	}
	return true
}
