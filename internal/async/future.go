// Package async provides a one-shot future for deferred results such as
// simulated settlements and bank capability lookups.
package async

import (
	"context"
	"sync"
)

// Future holds the result of an operation that completes later.
// It is resolved exactly once; later calls to resolve are ignored.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

// New returns an unresolved Future together with the function that resolves it
func New[T any]() (*Future[T], func(T, error)) {
	f := &Future[T]{done: make(chan struct{})}
	return f, f.resolve
}

// Go runs fn in its own goroutine and returns a Future for its result
func Go[T any](fn func() (T, error)) *Future[T] {
	f, resolve := New[T]()
	go func() {
		resolve(fn())
	}()
	return f
}

// Resolved returns a Future already holding v
func Resolved[T any](v T) *Future[T] {
	f, resolve := New[T]()
	resolve(v, nil)
	return f
}

// Failed returns a Future already holding err
func Failed[T any](err error) *Future[T] {
	f, resolve := New[T]()
	var zero T
	resolve(zero, err)
	return f
}

func (f *Future[T]) resolve(v T, err error) {
	f.once.Do(func() {
		f.value = v
		f.err = err
		close(f.done)
	})
}

// Done is closed once the result is available
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the result is available or ctx ends.
// Abandoning the wait does not cancel the underlying operation.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
