package pgstore

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	recordv1 "github.com/muhammadchandra19/economy/internal/domain/record/v1"
	"github.com/muhammadchandra19/economy/pkg/logger"
	"github.com/muhammadchandra19/economy/pkg/postgresql/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	data []byte
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*[]byte) = r.data
	return nil
}

type fakeRows struct {
	ids []string
	pos int
}

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos <= len(r.ids)
}

func (r *fakeRows) Scan(dest ...any) error {
	*dest[0].(*string) = r.ids[r.pos-1]
	return nil
}

func (r *fakeRows) Close()     {}
func (r *fakeRows) Err() error { return nil }

type testFixture struct {
	client *mock.MockPostgreSQLClient
	store  *Store
}

func setupTestFixture(t *testing.T) *testFixture {
	ctrl := gomock.NewController(t)
	client := mock.NewMockPostgreSQLClient(ctrl)

	return &testFixture{
		client: client,
		store:  New(client, "", logger.NewNopLogger()),
	}
}

func TestStoreLoad(t *testing.T) {
	testCases := []struct {
		name     string
		loc      recordv1.Locator
		mockFn   func(f *testFixture)
		assertFn func(t *testing.T, data []byte, err error)
	}{
		{
			name: "found",
			loc:  recordv1.User("42"),
			mockFn: func(f *testFixture) {
				f.client.EXPECT().QueryRow(gomock.Any(), f.store.loadSQL, "user", "42").
					Return(fakeRow{data: []byte(`{"bucks": 3}`)})
			},
			assertFn: func(t *testing.T, data []byte, err error) {
				require.NoError(t, err)
				assert.JSONEq(t, `{"bucks":3}`, string(data))
			},
		},
		{
			name: "no rows",
			loc:  recordv1.Global("market"),
			mockFn: func(f *testFixture) {
				f.client.EXPECT().QueryRow(gomock.Any(), f.store.loadSQL, "global", "market").
					Return(fakeRow{err: pgx.ErrNoRows})
			},
			assertFn: func(t *testing.T, data []byte, err error) {
				assert.Nil(t, data)
				assert.ErrorIs(t, err, recordv1.ErrNotFound)
			},
		},
		{
			name: "query failure",
			loc:  recordv1.Guild("9"),
			mockFn: func(f *testFixture) {
				f.client.EXPECT().QueryRow(gomock.Any(), f.store.loadSQL, "guild", "9").
					Return(fakeRow{err: errors.New("connection reset")})
			},
			assertFn: func(t *testing.T, data []byte, err error) {
				assert.ErrorIs(t, err, recordv1.ErrIO)
				assert.NotErrorIs(t, err, recordv1.ErrNotFound)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := setupTestFixture(t)
			tc.mockFn(f)

			data, err := f.store.Load(context.Background(), tc.loc)
			tc.assertFn(t, data, err)
		})
	}
}

func TestStoreSave(t *testing.T) {
	f := setupTestFixture(t)
	assert.Contains(t, f.store.saveSQL, `INSERT INTO "economy_records"`)
	assert.Contains(t, f.store.saveSQL, "ON CONFLICT (kind, id)")

	f.client.EXPECT().Exec(gomock.Any(), f.store.saveSQL, "user", "42", `{"bucks":1}`).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)
	require.NoError(t, f.store.Save(context.Background(), recordv1.User("42"), []byte(`{"bucks":1}`)))

	f.client.EXPECT().Exec(gomock.Any(), f.store.saveSQL, "user", "42", gomock.Any()).
		Return(pgconn.CommandTag{}, errors.New("disk full"))
	err := f.store.Save(context.Background(), recordv1.User("42"), []byte(`{}`))
	assert.ErrorIs(t, err, recordv1.ErrIO)

	err = f.store.Save(context.Background(), recordv1.User(""), []byte(`{}`))
	assert.ErrorIs(t, err, recordv1.ErrInvalidLocator)
}

func TestMigrations(t *testing.T) {
	m := NewMigrator(nil, "boar_records", logger.NewNopLogger())

	migrations, err := m.Migrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, "001_records", migrations[0].ID)
	assert.Equal(t, "records", migrations[0].Name)
	assert.Contains(t, migrations[0].UpSQL, `CREATE TABLE IF NOT EXISTS "boar_records"`)
	assert.Equal(t, `DROP TABLE IF EXISTS "boar_records";`, migrations[0].DownSQL)
	assert.Contains(t, migrations[1].UpSQL, `"boar_records_kind_updated_at_idx" ON "boar_records"`)
}

func TestMigrateUpSkipsApplied(t *testing.T) {
	f := setupTestFixture(t)
	m := NewMigrator(f.client, DefaultTable, logger.NewNopLogger())

	f.client.EXPECT().Exec(gomock.Any(), gomock.Any()).Return(pgconn.CommandTag{}, nil)
	f.client.EXPECT().Query(gomock.Any(), `SELECT id FROM "economy_records_schema_migrations" ORDER BY applied_at`).
		Return(&fakeRows{ids: []string{"001_records", "002_records_updated_at_idx"}}, nil)

	count, err := m.MigrateUp(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMigrateUpFailsOnMigrationTable(t *testing.T) {
	f := setupTestFixture(t)
	m := NewMigrator(f.client, DefaultTable, logger.NewNopLogger())

	f.client.EXPECT().Exec(gomock.Any(), gomock.Any()).Return(pgconn.CommandTag{}, errors.New("permission denied"))

	_, err := m.MigrateUp(context.Background())
	assert.ErrorContains(t, err, "permission denied")
}

func TestMigrateDownRejectsZeroSteps(t *testing.T) {
	m := NewMigrator(nil, DefaultTable, logger.NewNopLogger())

	_, err := m.MigrateDown(context.Background(), 0)
	assert.Error(t, err)
}
