package pgstore

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	recordv1 "github.com/muhammadchandra19/economy/internal/domain/record/v1"
	"github.com/muhammadchandra19/economy/pkg/logger"
	"github.com/muhammadchandra19/economy/pkg/postgresql"
)

// DefaultTable is the records table used when none is configured.
const DefaultTable = "economy_records"

// Store keeps every record as one JSONB row keyed by (kind, id).
type Store struct {
	client  postgresql.PostgreSQLClient
	loadSQL string
	saveSQL string
	logger  logger.Interface
}

var _ recordv1.Driver = (*Store)(nil)

// New creates a Store over table. The table must exist; see Migrator.
func New(client postgresql.PostgreSQLClient, table string, log logger.Interface) *Store {
	if table == "" {
		table = DefaultTable
	}
	ident := pgx.Identifier{table}.Sanitize()

	return &Store{
		client:  client,
		loadSQL: fmt.Sprintf("SELECT data FROM %s WHERE kind = $1 AND id = $2", ident),
		saveSQL: fmt.Sprintf(`INSERT INTO %s (kind, id, data, updated_at) VALUES ($1, $2, $3, NOW())
			ON CONFLICT (kind, id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`, ident),
		logger: log,
	}
}

// Load reads the row of loc.
func (s *Store) Load(ctx context.Context, loc recordv1.Locator) ([]byte, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.client.QueryRow(ctx, s.loadSQL, string(loc.Kind), loc.ID).Scan(&data)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", recordv1.ErrNotFound, loc.Key())
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", recordv1.ErrIO, loc.Key(), err)
	}
	return data, nil
}

// Save inserts or replaces the row of loc.
func (s *Store) Save(ctx context.Context, loc recordv1.Locator, data []byte) error {
	if err := loc.Validate(); err != nil {
		return err
	}

	tag, err := s.client.Exec(ctx, s.saveSQL, string(loc.Kind), loc.ID, string(data))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", recordv1.ErrIO, loc.Key(), err)
	}
	s.logger.DebugContext(ctx, "record upserted",
		logger.Field{Key: "locator", Value: loc.Key()},
		logger.Field{Key: "tag", Value: tag.String()},
	)
	return nil
}
