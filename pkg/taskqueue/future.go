package taskqueue

import "context"

// Future is the pending result of a queued task.
type Future[T any] struct {
	key  string
	id   string
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any](key, id string) *Future[T] {
	return &Future[T]{key: key, id: id, done: make(chan struct{})}
}

// Resolved returns a future that is already complete with val and err.
func Resolved[T any](key string, val T, err error) *Future[T] {
	f := newFuture[T](key, "")
	f.resolve(val, err)
	return f
}

func (f *Future[T]) resolve(val T, err error) {
	f.val = val
	f.err = err
	close(f.done)
}

// Key returns the queue key the task was submitted under.
func (f *Future[T]) Key() string { return f.key }

// ID returns the task id.
func (f *Future[T]) ID() string { return f.id }

// Done is closed once the task has finished or was skipped.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait blocks until the task finishes or ctx is done. Giving up on the wait does
// not cancel the task; it still runs in its turn.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
