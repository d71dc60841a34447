package sandbox

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrPoolClosed = errors.New("sandbox pool is closed")
	ErrTimeout    = errors.New("sandbox acquisition timeout")
)

// Pool bounds how many scopes execute at once. goja runtimes are single
// threaded and cheap to create, so the pool hands out slots rather than
// reusing runtimes.
type Pool struct {
	slots   chan struct{}
	size    int
	timeout time.Duration
	mu      sync.RWMutex
	closed  bool
}

// NewPool creates a pool of size slots. Acquire gives up after timeout;
// zero waits for the context only.
func NewPool(size int, timeout time.Duration) *Pool {
	if size <= 0 {
		size = 4
	}
	return &Pool{
		slots:   make(chan struct{}, size),
		size:    size,
		timeout: timeout,
	}
}

// Acquire takes a slot, waiting for one to free up
func (p *Pool) Acquire(ctx context.Context) error {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return ErrPoolClosed
	}

	var expired <-chan time.Time
	if p.timeout > 0 {
		timer := time.NewTimer(p.timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case p.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-expired:
		return ErrTimeout
	}
}

// Release returns a slot to the pool
func (p *Pool) Release() {
	select {
	case <-p.slots:
	default:
	}
}

// Do runs fn while holding a slot.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	if err := p.Acquire(ctx); err != nil {
		return err
	}
	defer p.Release()
	return fn()
}

// Close stops handing out slots. Running work is not interrupted.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// InUse returns the number of held slots.
func (p *Pool) InUse() int {
	return len(p.slots)
}

// Stats returns pool statistics
func (p *Pool) Stats() map[string]interface{} {
	p.mu.RLock()
	defer p.mu.RUnlock()

	inUse := len(p.slots)
	return map[string]interface{}{
		"size":      p.size,
		"available": p.size - inUse,
		"in_use":    inUse,
		"closed":    p.closed,
	}
}
