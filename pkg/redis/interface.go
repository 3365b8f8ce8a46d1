package redis

import (
	"context"
	"time"
)

// Client defines the subset of redis operations the record store and event sink need.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=redis_mock
type Client interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error
	// Reconnect reports whether a new connection was made.
	Reconnect(ctx context.Context) bool

	// Get returns found=false when the key does not exist.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error

	Publish(ctx context.Context, channel string, message any) (int64, error)
}
