// Package future runs a blocking call on its own goroutine and hands the
// result back later. Every async variant in clustercache is a thin wrapper
// over the synchronous call, so both forms share one implementation.
package future

import "context"

type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Go starts fn immediately. Panics in fn are not recovered.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.val, f.err = fn()
	}()
	return f
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait blocks until the call completes or ctx ends. Abandoning the wait does
// not cancel the call itself; cancel the context passed to fn for that.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result blocks until completion.
func (f *Future[T]) Result() (T, error) {
	<-f.done
	return f.val, f.err
}
