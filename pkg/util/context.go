package util

import (
	"context"
)

type key string

const (
	taskKeyKey   = key("task-key")
	taskIDKey    = key("task-id")
	actorIDKey   = key("actor-id")
	commandIDKey = key("command-id")
)

// FieldsFromContext collects the tracing values this package stores in a context.
type FieldsFromContext struct{}

// Fields returns a map of the key-value pairs that this library has set into `context`.
// Empty values are omitted.
func (f *FieldsFromContext) Fields(ctx context.Context) map[string]interface{} {
	mapFields := make(map[string]interface{})
	for name, value := range map[string]string{
		"request_id": GetRequestID(ctx),
		"task_key":   GetTaskKey(ctx),
		"task_id":    GetTaskID(ctx),
		"actor_id":   GetActorID(ctx),
		"command_id": GetCommandID(ctx),
	} {
		if value != "" {
			mapFields[name] = value
		}
	}

	return mapFields
}

// WithTask returns a context carrying the key and id of the queued task running under it.
func WithTask(ctx context.Context, taskKey, taskID string) context.Context {
	ctx = context.WithValue(ctx, taskKeyKey, taskKey)
	return context.WithValue(ctx, taskIDKey, taskID)
}

// WithActorID returns a context with the id of the user acting on the economy
func WithActorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, actorIDKey, id)
}

// WithCommandID returns a context with the id of the intake command being processed
func WithCommandID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, commandIDKey, id)
}

// WithRequestID returns a context with request id
func WithRequestID(ctx context.Context, id string) context.Context {
	return ContextWithRequestID(ctx, id)
}

// GetTaskKey returns the queue key of the running task, empty outside a task.
func GetTaskKey(ctx context.Context) string {
	v, _ := ctx.Value(taskKeyKey).(string)
	return v
}

// GetTaskID returns the id of the running task, empty outside a task.
func GetTaskID(ctx context.Context) string {
	v, _ := ctx.Value(taskIDKey).(string)
	return v
}

// GetActorID returns actor id from context
func GetActorID(ctx context.Context) string {
	id, _ := ctx.Value(actorIDKey).(string)
	return id
}

// GetCommandID returns command id from context
func GetCommandID(ctx context.Context) string {
	id, _ := ctx.Value(commandIDKey).(string)
	return id
}

// GetRequestID returns request id from context
func GetRequestID(ctx context.Context) string {
	return FromContext(ctx)
}
