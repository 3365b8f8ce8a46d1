package main

import (
	"context"
	"flag"
	"log"

	"github.com/muhammadchandra19/economy/internal/infrastructure/pgstore"
	"github.com/muhammadchandra19/economy/pkg/config"
	"github.com/muhammadchandra19/economy/pkg/logger"
	"github.com/muhammadchandra19/economy/pkg/postgresql"
)

func main() {
	down := flag.Int("down", 0, "Revert this many migrations instead of applying pending ones")
	flag.Parse()

	ctx := context.Background()

	var cfg config.Config
	if err := config.Load(&cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.NewLogger(logger.WithLoggingLevel(logger.ParseLevel(cfg.App.LogLevel)))
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()

	client, err := postgresql.NewClient(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer client.Close()

	migrator := pgstore.NewMigrator(client, cfg.Store.PGTable, zl)
	if *down > 0 {
		n, err := migrator.MigrateDown(ctx, *down)
		if err != nil {
			log.Fatalf("Failed to revert migrations: %v", err)
		}
		log.Printf("Reverted %d migrations", n)
		return
	}

	n, err := migrator.MigrateUp(ctx)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Printf("Applied %d migrations", n)
}
