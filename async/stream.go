package async

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync/atomic"
)

// Stream is a finite, non-restartable sequence produced by a goroutine.
// The producer is canceled by Close, which waits until it has released its resources.
type Stream[T any] struct {
	ch     chan T
	done   chan struct{}
	cancel context.CancelFunc
	closed atomic.Bool
	cur    T
	err    error
}

// NewStream starts produce in a new goroutine. emit blocks until the consumer takes
// the value and returns false once the stream is canceled; produce should stop then.
func NewStream[T any](ctx context.Context, produce func(ctx context.Context, emit func(T) bool) error) *Stream[T] {
	ctx, cancel := context.WithCancel(ctx)
	s := &Stream[T]{
		ch:     make(chan T),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go func() {
		defer close(s.done)
		defer cancel()
		s.err = run(ctx, produce, func(v T) bool {
			select {
			case s.ch <- v:
				return true
			case <-ctx.Done():
				return false
			}
		})
		close(s.ch)
	}()
	return s
}

func run[T any](ctx context.Context, produce func(context.Context, func(T) bool) error, emit func(T) bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("async: panic: %v", r)
		}
	}()
	return produce(ctx, emit)
}

// Next advances to the next value. It returns false when the stream is exhausted,
// failed, or closed.
func (s *Stream[T]) Next() bool {
	v, ok := <-s.ch
	if !ok {
		<-s.done
		var zero T
		s.cur = zero
		return false
	}
	s.cur = v
	return true
}

// Value returns the value read by the last successful Next.
func (s *Stream[T]) Value() T {
	return s.cur
}

// Err returns the producer's error once the stream has ended.
// Cancellation caused by Close is not reported.
func (s *Stream[T]) Err() error {
	select {
	case <-s.done:
	default:
		return nil
	}
	if s.closed.Load() && errors.Is(s.err, context.Canceled) {
		return nil
	}
	return s.err
}

// Close cancels the producer and waits for it to exit. It is safe to call more than once.
func (s *Stream[T]) Close() error {
	s.closed.Store(true)
	s.cancel()
	<-s.done
	return nil
}

// All returns an iterator over the remaining values. A failure is yielded last
// with a zero value. Breaking out of the loop closes the stream.
func (s *Stream[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		defer s.Close()
		for s.Next() {
			if !yield(s.cur, nil) {
				return
			}
		}
		if err := s.Err(); err != nil {
			var zero T
			yield(zero, err)
		}
	}
}

// Collect drains the stream into a slice.
func (s *Stream[T]) Collect() ([]T, error) {
	defer s.Close()
	out := make([]T, 0)
	for s.Next() {
		out = append(out, s.cur)
	}
	return out, s.Err()
}
