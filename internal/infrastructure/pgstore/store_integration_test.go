//go:build integration

package pgstore

import (
	"context"
	"testing"

	recordv1 "github.com/muhammadchandra19/economy/internal/domain/record/v1"
	"github.com/muhammadchandra19/economy/internal/usecase/record"
	"github.com/muhammadchandra19/economy/pkg/logger"
	"github.com/muhammadchandra19/economy/pkg/postgresql"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	helper   *postgresql.TestContainer
	migrator *Migrator
	store    *Store
	ctx      context.Context
}

func (s *StoreTestSuite) SetupSuite() {
	s.ctx = context.Background()
	s.helper = postgresql.NewTestHelper(s.T(), nil)

	log := logger.NewNopLogger()
	s.migrator = NewMigrator(s.helper.Client, DefaultTable, log)
	s.store = New(s.helper.Client, DefaultTable, log)

	applied, err := s.migrator.MigrateUp(s.ctx)
	require.NoError(s.T(), err)
	require.Equal(s.T(), 2, applied)
}

func (s *StoreTestSuite) SetupTest() {
	require.NoError(s.T(), s.helper.Truncate(s.ctx, DefaultTable))
}

func (s *StoreTestSuite) TestMigrateUpIsIdempotent() {
	applied, err := s.migrator.MigrateUp(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, applied)

	ids, err := s.migrator.AppliedMigrations(s.ctx)
	s.Require().NoError(err)
	s.Equal(map[string]bool{"001_records": true, "002_records_updated_at_idx": true}, ids)
}

func (s *StoreTestSuite) TestLoadMissing() {
	_, err := s.store.Load(s.ctx, recordv1.User("404"))
	s.ErrorIs(err, recordv1.ErrNotFound)
}

func (s *StoreTestSuite) TestSaveUpserts() {
	loc := recordv1.User("42")

	s.Require().NoError(s.store.Save(s.ctx, loc, []byte(`{"userID":"42","bucks":5}`)))
	data, err := s.store.Load(s.ctx, loc)
	s.Require().NoError(err)
	s.JSONEq(`{"userID":"42","bucks":5}`, string(data))

	s.Require().NoError(s.store.Save(s.ctx, loc, []byte(`{"userID":"42","bucks":9}`)))
	data, err = s.store.Load(s.ctx, loc)
	s.Require().NoError(err)
	s.JSONEq(`{"userID":"42","bucks":9}`, string(data))

	_, err = s.store.Load(s.ctx, recordv1.Guild("42"))
	s.ErrorIs(err, recordv1.ErrNotFound)
}

func (s *StoreTestSuite) TestRepositoryOverStore() {
	users := record.NewRepository[recordv1.UserRecord](s.store, recordv1.KindUser, logger.NewNopLogger())

	s.Require().NoError(users.Save(s.ctx, "7", &recordv1.UserRecord{UserID: "7", Bucks: 120}))
	got, err := users.Load(s.ctx, "7")
	s.Require().NoError(err)
	s.Equal(int64(120), got.Bucks)
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func TestMigrateDown(t *testing.T) {
	ctx := context.Background()
	helper := postgresql.NewTestHelper(t, nil)
	log := logger.NewNopLogger()

	migrator := NewMigrator(helper.Client, "down_records", log)
	store := New(helper.Client, "down_records", log)

	applied, err := migrator.MigrateUp(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, applied)
	require.NoError(t, store.Save(ctx, recordv1.Global("market"), []byte(`{}`)))

	reverted, err := migrator.MigrateDown(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, reverted)

	ids, err := migrator.AppliedMigrations(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]bool{"001_records": true}, ids)
	_, err = store.Load(ctx, recordv1.Global("market"))
	require.NoError(t, err)

	reverted, err = migrator.MigrateDown(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, 1, reverted)

	_, err = store.Load(ctx, recordv1.Global("market"))
	require.ErrorIs(t, err, recordv1.ErrIO)
}
