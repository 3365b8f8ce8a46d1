// Package taskqueue serializes work per resource key.
//
// Tasks submitted under the same key run one at a time in submission order. Tasks
// under different keys run concurrently. A task that enqueues another task under its
// own key and waits for it deadlocks; callers must not do that.
package taskqueue

import (
	"context"
	"fmt"
	"sync"

	"github.com/muhammadchandra19/economy/pkg/logger"
	"github.com/muhammadchandra19/economy/pkg/util"
	"github.com/oklog/ulid/v2"
)

// Task is a unit of work run inside a key's critical section. The ctx it receives
// carries the task key and id.
type Task[T any] func(ctx context.Context) (T, error)

// line is the bookkeeping for one key: the completion signal of the last submitted
// task and the number of tasks not yet finished.
type line struct {
	tail    chan struct{}
	pending int
}

// Queue is a registry of per-key FIFO lines. The zero value is not usable; use New.
type Queue struct {
	mu     sync.Mutex
	lines  map[string]*line
	logger logger.Interface
}

// New creates an empty Queue.
func New(log logger.Interface) *Queue {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Queue{
		lines:  make(map[string]*line),
		logger: log,
	}
}

// Len returns the number of keys that currently have pending tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.lines)
}

// Pending returns the number of unfinished tasks for key, including a running one.
func (q *Queue) Pending(key string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if ln, ok := q.lines[key]; ok {
		return ln.pending
	}
	return 0
}

// acquire appends a slot to key's line. It returns the channel to wait on before
// running (nil when the line was empty) and the channel to close when done.
func (q *Queue) acquire(key string) (prev <-chan struct{}, done chan struct{}) {
	q.mu.Lock()
	defer q.mu.Unlock()

	ln, ok := q.lines[key]
	if !ok {
		ln = &line{}
		q.lines[key] = ln
	}
	prev = ln.tail
	done = make(chan struct{})
	ln.tail = done
	ln.pending++
	return prev, done
}

func (q *Queue) release(key string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	ln := q.lines[key]
	ln.pending--
	if ln.pending == 0 {
		delete(q.lines, key)
	}
}

// Enqueue submits task under key and returns immediately. The task starts once every
// task submitted earlier under the same key has finished, successfully or not.
//
// If ctx is done by the time the task's turn comes, the body is skipped and the
// future resolves with a TaskError wrapping ctx.Err(). Otherwise the body's error,
// or a recovered panic, is wrapped in a TaskError.
func Enqueue[T any](ctx context.Context, q *Queue, key string, task Task[T]) *Future[T] {
	id := ulid.Make().String()
	f := newFuture[T](key, id)
	prev, done := q.acquire(key)

	q.logger.DebugContext(ctx, "task enqueued",
		logger.Field{Key: "task_key", Value: key},
		logger.Field{Key: "task_id", Value: id},
	)

	go func() {
		defer q.release(key)
		defer close(done)

		if prev != nil {
			<-prev
		}

		taskCtx := util.WithTask(ctx, key, id)
		if err := ctx.Err(); err != nil {
			var zero T
			f.resolve(zero, &TaskError{Key: key, TaskID: id, Err: err})
			q.logger.WarnContext(taskCtx, "task skipped, submitter gave up", logger.Field{Key: "reason", Value: err.Error()})
			return
		}

		val, err := run(taskCtx, task)
		if err != nil {
			f.resolve(val, &TaskError{Key: key, TaskID: id, Err: err})
			q.logger.WarnContext(taskCtx, "task failed", logger.Field{Key: "error", Value: err.Error()})
			return
		}
		f.resolve(val, nil)
		q.logger.DebugContext(taskCtx, "task finished")
	}()

	return f
}

// Do enqueues task under key and waits for its result.
func Do[T any](ctx context.Context, q *Queue, key string, task Task[T]) (T, error) {
	return Enqueue(ctx, q, key, task).Wait(ctx)
}

func run[T any](ctx context.Context, task Task[T]) (val T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			val = zero
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return task(ctx)
}
