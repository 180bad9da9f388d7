package future

import (
	"context"
	"sync"

	"avtopology/internal/scheduler"
)

// Future represents some future result.
type Future[T any] interface {

	// Wait for the future to resolve. Returns the context error if it cancels.
	Wait(ctx context.Context) (T, error)

	// Sync checks the future's result immediately, returning false if not yet available.
	Sync() (T, error, bool)

	// Done is closed once the future has resolved.
	Done() <-chan struct{}
}

type futureImpl[T any] struct {
	doneCh chan struct{}
	result T
	err    error
	once   sync.Once
}

func (f *futureImpl[T]) Wait(ctx context.Context) (res T, err error) {
	select {
	case <-ctx.Done():
		err = ctx.Err()
		return
	case <-f.doneCh:
	}
	return f.result, f.err
}

func (f *futureImpl[T]) Sync() (res T, err error, ok bool) {
	select {
	case <-f.doneCh:
	default:
		return
	}
	return f.result, f.err, true
}

func (f *futureImpl[T]) Done() <-chan struct{} {
	return f.doneCh
}

// New creates a new resolvable future.
func New[T any]() (Future[T], func(result T, err error)) {
	f := &futureImpl[T]{
		doneCh: make(chan struct{}),
	}
	resolve := func(result T, err error) {
		// ignore additional calls
		f.once.Do(func() {
			f.err = err
			f.result = result
			close(f.doneCh)
		})
	}
	return f, resolve
}

// Resolved returns an already resolved future.
func Resolved[T any](result T, err error) Future[T] {
	f, resolve := New[T]()
	resolve(result, err)
	return f
}

// Go runs fn on its own goroutine and resolves the returned future with its result.
func Go[T any](fn func() (T, error)) Future[T] {
	f, resolve := New[T]()
	go func() {
		resolve(fn())
	}()
	return f
}

// Then delivers the result of f to fn inside the scheduler context. This is
// how asynchronous results re-enter the serialized domain before touching
// any watchable.
func Then[T any](f Future[T], s scheduler.Scheduler, fn func(result T, err error)) {
	go func() {
		<-f.Done()
		res, err, _ := f.Sync()
		s.Schedule(func() {
			fn(res, err)
		})
	}()
}

// Map transforms the result of f once it resolves. Errors pass through
// without calling fn.
func Map[T, U any](f Future[T], fn func(T) (U, error)) Future[U] {
	return Go(func() (U, error) {
		res, err := f.Wait(context.Background())
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(res)
	})
}
