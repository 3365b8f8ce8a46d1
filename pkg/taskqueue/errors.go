package taskqueue

import (
	"errors"
	"fmt"
)

// ErrTaskPanicked is wrapped by TaskError when a task body panics.
var ErrTaskPanicked = errors.New("task panicked")

// TaskError wraps an error returned by a queued task. It is delivered only to the
// submitter of that task.
type TaskError struct {
	Key    string
	TaskID string
	Err    error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s on key %q: %v", e.TaskID, e.Key, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}
