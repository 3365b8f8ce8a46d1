package pebblestore

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	recordv1 "github.com/muhammadchandra19/economy/internal/domain/record/v1"
	"github.com/muhammadchandra19/economy/pkg/errors"
	"github.com/muhammadchandra19/economy/pkg/logger"
)

// Store keeps records in an embedded pebble database under their locator key.
// Every write is synced before Save returns.
type Store struct {
	db     *pebble.DB
	logger logger.Interface
}

var _ recordv1.Driver = (*Store)(nil)

// Open opens or creates the database at path.
func Open(path string, log logger.Interface) (*Store, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, errors.NewTracer(string(errors.PebbleOpenError)).Wrap(err)
	}
	log.Info("pebble store opened", logger.Field{Key: "path", Value: path})
	return &Store{db: db, logger: log}, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func key(loc recordv1.Locator) ([]byte, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	return []byte(loc.Key()), nil
}

// Load returns a copy of the value stored for loc.
func (s *Store) Load(_ context.Context, loc recordv1.Locator) ([]byte, error) {
	k, err := key(loc)
	if err != nil {
		return nil, err
	}

	val, closer, err := s.db.Get(k)
	if stderrors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", recordv1.ErrNotFound, loc.Key())
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", recordv1.ErrIO, loc.Key(), err)
	}
	defer closer.Close()

	// val is only valid until closer is closed.
	return append([]byte(nil), val...), nil
}

// Save writes data for loc.
func (s *Store) Save(_ context.Context, loc recordv1.Locator, data []byte) error {
	k, err := key(loc)
	if err != nil {
		return err
	}

	if err := s.db.Set(k, data, pebble.Sync); err != nil {
		return fmt.Errorf("%w: %s: %w", recordv1.ErrIO, loc.Key(), err)
	}
	return nil
}
