package pebblestore

import (
	"context"
	"testing"

	recordv1 "github.com/muhammadchandra19/economy/internal/domain/record/v1"
	"github.com/muhammadchandra19/economy/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *Store {
	s, err := Open(t.TempDir(), logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.Load(ctx, recordv1.User("42"))
	assert.ErrorIs(t, err, recordv1.ErrNotFound)

	require.NoError(t, s.Save(ctx, recordv1.User("42"), []byte(`{"bucks":1}`)))
	require.NoError(t, s.Save(ctx, recordv1.Guild("42"), []byte(`{"fullySetup":true}`)))
	require.NoError(t, s.Save(ctx, recordv1.User("42"), []byte(`{"bucks":2}`)))

	data, err := s.Load(ctx, recordv1.User("42"))
	require.NoError(t, err)
	assert.Equal(t, `{"bucks":2}`, string(data))

	data, err = s.Load(ctx, recordv1.Guild("42"))
	require.NoError(t, err)
	assert.Equal(t, `{"fullySetup":true}`, string(data))
}

func TestStoreReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir, logger.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, recordv1.Global("market"), []byte(`{"itemData":{}}`)))
	require.NoError(t, s.Close())

	s, err = Open(dir, logger.NewNopLogger())
	require.NoError(t, err)
	defer s.Close()

	data, err := s.Load(ctx, recordv1.Global("market"))
	require.NoError(t, err)
	assert.Equal(t, `{"itemData":{}}`, string(data))
}

func TestStoreRejectsInvalidLocator(t *testing.T) {
	s := setupStore(t)

	err := s.Save(context.Background(), recordv1.User(".."), []byte(`{}`))
	assert.ErrorIs(t, err, recordv1.ErrInvalidLocator)

	_, err = s.Load(context.Background(), recordv1.Locator{Kind: "boar", ID: "1"})
	assert.ErrorIs(t, err, recordv1.ErrInvalidLocator)
}
