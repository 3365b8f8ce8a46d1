package pgstore

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/muhammadchandra19/economy/pkg/errors"
	"github.com/muhammadchandra19/economy/pkg/logger"
	"github.com/muhammadchandra19/economy/pkg/postgresql"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration is one schema change of the records table.
type Migration struct {
	ID      string
	Name    string
	UpSQL   string
	DownSQL string
}

// Migrator applies the embedded migrations and records them in a migrations table.
type Migrator struct {
	client          postgresql.PostgreSQLClient
	table           string
	migrationsTable string
	logger          logger.Interface
}

// NewMigrator creates a Migrator for the records table named table.
func NewMigrator(client postgresql.PostgreSQLClient, table string, log logger.Interface) *Migrator {
	return &Migrator{
		client:          client,
		table:           table,
		migrationsTable: table + "_schema_migrations",
		logger:          log,
	}
}

func (m *Migrator) render(sql string) string {
	return strings.NewReplacer(
		"{{table}}", pgx.Identifier{m.table}.Sanitize(),
		"{{index}}", pgx.Identifier{m.table + "_kind_updated_at_idx"}.Sanitize(),
	).Replace(sql)
}

// EnsureMigrationTable creates the migrations table if it does not exist.
func (m *Migrator) EnsureMigrationTable(ctx context.Context) error {
	_, err := m.client.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);
	`, pgx.Identifier{m.migrationsTable}.Sanitize()))
	return err
}

// AppliedMigrations returns the ids of the applied migrations.
func (m *Migrator) AppliedMigrations(ctx context.Context) (map[string]bool, error) {
	rows, err := m.client.Query(ctx, fmt.Sprintf("SELECT id FROM %s ORDER BY applied_at",
		pgx.Identifier{m.migrationsTable}.Sanitize()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		applied[id] = true
	}
	return applied, rows.Err()
}

// Migrations returns the embedded migrations ordered by id, with the table name
// filled in.
func (m *Migrator) Migrations() ([]Migration, error) {
	upFiles, err := fs.Glob(migrationFiles, "migrations/*.up.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(upFiles)

	migrations := make([]Migration, 0, len(upFiles))
	for _, upFile := range upFiles {
		up, err := migrationFiles.ReadFile(upFile)
		if err != nil {
			return nil, err
		}

		id := strings.TrimSuffix(strings.TrimPrefix(upFile, "migrations/"), ".up.sql")
		name := id
		if parts := strings.SplitN(id, "_", 2); len(parts) == 2 {
			name = parts[1]
		}

		var downSQL string
		if down, err := migrationFiles.ReadFile(strings.Replace(upFile, ".up.sql", ".down.sql", 1)); err == nil {
			downSQL = m.render(strings.TrimSpace(string(down)))
		}

		migrations = append(migrations, Migration{
			ID:      id,
			Name:    name,
			UpSQL:   m.render(strings.TrimSpace(string(up))),
			DownSQL: downSQL,
		})
	}
	return migrations, nil
}

// MigrateUp applies every pending migration, each in its own transaction, and
// returns how many were applied.
func (m *Migrator) MigrateUp(ctx context.Context) (int, error) {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return 0, errors.NewTracer(string(errors.PostgresMigrationError)).Wrap(err)
	}

	migrations, err := m.Migrations()
	if err != nil {
		return 0, errors.NewTracer(string(errors.PostgresMigrationError)).Wrap(err)
	}
	applied, err := m.AppliedMigrations(ctx)
	if err != nil {
		return 0, errors.NewTracer(string(errors.PostgresMigrationError)).Wrap(err)
	}

	count := 0
	for _, migration := range migrations {
		if applied[migration.ID] {
			continue
		}

		err := postgresql.WithTx(ctx, m.client, func(txCtx context.Context) error {
			if _, err := m.client.Exec(txCtx, migration.UpSQL); err != nil {
				return err
			}
			_, err := m.client.Exec(txCtx,
				fmt.Sprintf("INSERT INTO %s (id, name, applied_at) VALUES ($1, $2, NOW())",
					pgx.Identifier{m.migrationsTable}.Sanitize()),
				migration.ID, migration.Name)
			return err
		})
		if err != nil {
			return count, errors.NewTracer(string(errors.PostgresMigrationError)).
				Wrap(fmt.Errorf("apply migration %s: %w", migration.ID, err))
		}

		m.logger.Info("migration applied", logger.Field{Key: "migration", Value: migration.ID})
		count++
	}
	return count, nil
}

// MigrateDown reverts up to steps applied migrations, newest first.
func (m *Migrator) MigrateDown(ctx context.Context, steps int) (int, error) {
	if steps <= 0 {
		return 0, errors.NewTracer(string(errors.PostgresMigrationError)).
			Wrap(fmt.Errorf("steps must be greater than 0, got %d", steps))
	}

	migrations, err := m.Migrations()
	if err != nil {
		return 0, errors.NewTracer(string(errors.PostgresMigrationError)).Wrap(err)
	}
	applied, err := m.AppliedMigrations(ctx)
	if err != nil {
		return 0, errors.NewTracer(string(errors.PostgresMigrationError)).Wrap(err)
	}

	count := 0
	for i := len(migrations) - 1; i >= 0 && count < steps; i-- {
		migration := migrations[i]
		if !applied[migration.ID] {
			continue
		}
		if migration.DownSQL == "" {
			return count, errors.NewTracer(string(errors.PostgresMigrationError)).
				Wrap(fmt.Errorf("migration %s cannot be reverted", migration.ID))
		}

		err := postgresql.WithTx(ctx, m.client, func(txCtx context.Context) error {
			if _, err := m.client.Exec(txCtx, migration.DownSQL); err != nil {
				return err
			}
			_, err := m.client.Exec(txCtx,
				fmt.Sprintf("DELETE FROM %s WHERE id = $1", pgx.Identifier{m.migrationsTable}.Sanitize()),
				migration.ID)
			return err
		})
		if err != nil {
			return count, errors.NewTracer(string(errors.PostgresMigrationError)).
				Wrap(fmt.Errorf("revert migration %s: %w", migration.ID, err))
		}

		m.logger.Info("migration reverted", logger.Field{Key: "migration", Value: migration.ID})
		count++
	}
	return count, nil
}
