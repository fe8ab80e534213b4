package eventflag

import (
	"context"
	"sync"
)

// Latch is a one-shot result holder: resolved with a value or failed with
// an error exactly once, then read by any number of waiters. Unlike Flag
// it cannot be cleared and re-armed.
type Latch[T any] struct {
	once sync.Once
	done chan struct{}
	val  T
	err  error
}

// NewLatch creates an unresolved latch.
func NewLatch[T any]() *Latch[T] {
	return &Latch[T]{done: make(chan struct{})}
}

// Resolve publishes the value and releases all waiters. Returns false if
// the latch was already resolved or failed.
func (l *Latch[T]) Resolve(v T) bool {
	won := false
	l.once.Do(func() {
		l.val = v
		won = true
		close(l.done)
	})
	return won
}

// Fail publishes an error and releases all waiters. Returns false if the
// latch was already resolved or failed.
func (l *Latch[T]) Fail(err error) bool {
	won := false
	l.once.Do(func() {
		l.err = err
		won = true
		close(l.done)
	})
	return won
}

// Wait blocks until the latch is resolved, failed, or ctx is done.
func (l *Latch[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-l.done:
		return l.val, l.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// TryResult returns the outcome without blocking. ok reports whether the
// latch has been resolved or failed yet.
func (l *Latch[T]) TryResult() (v T, err error, ok bool) {
	select {
	case <-l.done:
		return l.val, l.err, true
	default:
		var zero T
		return zero, nil, false
	}
}

// IsSet reports whether the latch has been resolved or failed.
func (l *Latch[T]) IsSet() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed once the latch is resolved or failed.
// Useful in select statements.
func (l *Latch[T]) Done() <-chan struct{} {
	return l.done
}
