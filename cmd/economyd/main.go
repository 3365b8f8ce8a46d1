package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/muhammadchandra19/economy/internal/app/daemon"
	"github.com/muhammadchandra19/economy/pkg/config"
	"github.com/muhammadchandra19/economy/pkg/logger"
)

var (
	cfg config.Config
	log *logger.Logger
)

func init() {
	if err := config.Load(&cfg); err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid config", "error", err)
		os.Exit(1)
	}

	var err error
	log, err = logger.NewLogger(logger.WithLoggingLevel(logger.ParseLevel(cfg.App.LogLevel)))
	if err != nil {
		slog.Error("Failed to create logger", "error", err)
		os.Exit(1)
	}
}

func main() {
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := daemon.Init(ctx, &cfg, log)
	if err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "init"})
		os.Exit(1)
	}

	if err := d.Warm(ctx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "warm"})
		_ = d.Shutdown(context.Background())
		os.Exit(1)
	}

	if err := d.Start(ctx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "start"})
		_ = d.Shutdown(context.Background())
		os.Exit(1)
	}
	log.Info("economyd started",
		logger.Field{Key: "store", Value: string(cfg.Store.Driver)},
		logger.Field{Key: "events", Value: string(cfg.Events.Sink)},
		logger.Field{Key: "kafka", Value: cfg.Kafka.Enabled},
		logger.Field{Key: "admin", Value: cfg.Admin.Addr},
	)

	<-ctx.Done()
	log.Info("Shutting down economyd...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Engine.ShutdownTimeout)
	defer cancel()
	if err := d.Shutdown(shutdownCtx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "shutdown"})
		return
	}
	log.Info("economyd stopped")
}
