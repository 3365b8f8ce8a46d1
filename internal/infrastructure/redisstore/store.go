package redisstore

import (
	"context"
	"fmt"

	recordv1 "github.com/muhammadchandra19/economy/internal/domain/record/v1"
	"github.com/muhammadchandra19/economy/pkg/errors"
	"github.com/muhammadchandra19/economy/pkg/logger"
	"github.com/muhammadchandra19/economy/pkg/redis"
)

// Store keeps each record as one redis string under prefix + locator key, for
// example "economy:user:42".
type Store struct {
	client redis.Client
	prefix string
	logger logger.Interface
}

var _ recordv1.Driver = (*Store)(nil)

// New creates a Store over a connected client.
func New(client redis.Client, prefix string, log logger.Interface) *Store {
	return &Store{client: client, prefix: prefix, logger: log}
}

func (s *Store) key(loc recordv1.Locator) (string, error) {
	if err := loc.Validate(); err != nil {
		return "", err
	}
	return s.prefix + loc.Key(), nil
}

// Load reads the value stored for loc.
func (s *Store) Load(ctx context.Context, loc recordv1.Locator) ([]byte, error) {
	key, err := s.key(loc)
	if err != nil {
		return nil, err
	}

	value, found, err := s.client.Get(ctx, key)
	if s.reconnected(ctx, err, errors.RedisGetError) {
		value, found, err = s.client.Get(ctx, key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", recordv1.ErrIO, key, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", recordv1.ErrNotFound, key)
	}
	return []byte(value), nil
}

// Save overwrites the value stored for loc. Records never expire.
func (s *Store) Save(ctx context.Context, loc recordv1.Locator, data []byte) error {
	key, err := s.key(loc)
	if err != nil {
		return err
	}

	err = s.client.Set(ctx, key, data, 0)
	if s.reconnected(ctx, err, errors.RedisSetError) {
		err = s.client.Set(ctx, key, data, 0)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", recordv1.ErrIO, key, err)
	}
	return nil
}

// reconnected reports whether err is a redis command failure with code and a fresh
// connection was made, in which case the command is worth one more try.
func (s *Store) reconnected(ctx context.Context, err error, code errors.ErrorCode) bool {
	if err == nil || !errors.ErrorCodeEquals(err, string(code)) {
		return false
	}

	s.logger.WarnContext(ctx, "redis command failed, reconnecting", logger.Field{Key: "error", Value: err.Error()})
	return s.client.Reconnect(ctx)
}
