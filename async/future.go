// Package async provides the deferred results returned by the asynchronous
// table operations: a Future for single values and a Stream for row sequences.
package async

import (
	"context"
	"fmt"
)

// Future is the pending result of one operation running in its own goroutine.
type Future[T any] struct {
	done   chan struct{}
	cancel context.CancelFunc
	val    T
	err    error
}

// Go runs fn in a new goroutine. fn receives a context that is canceled by
// Cancel or when the parent context ends.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Future[T] {
	ctx, cancel := context.WithCancel(ctx)
	f := &Future[T]{
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go func() {
		defer cancel()
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("async: panic: %v", r)
			}
		}()
		f.val, f.err = fn(ctx)
	}()
	return f
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await waits for the result. If ctx ends first it returns ctx.Err()
// without canceling the operation.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Get blocks until the result is available.
func (f *Future[T]) Get() (T, error) {
	<-f.done
	return f.val, f.err
}

// Cancel cancels the operation's context. The result will carry the
// backend's cancellation error unless the operation already finished.
func (f *Future[T]) Cancel() {
	f.cancel()
}
