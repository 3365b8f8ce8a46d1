package daemon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/muhammadchandra19/economy/internal/app/admin"
	"github.com/muhammadchandra19/economy/internal/app/engine"
	economyv1 "github.com/muhammadchandra19/economy/internal/domain/economy/v1"
	eventv1 "github.com/muhammadchandra19/economy/internal/domain/event/v1"
	recordv1 "github.com/muhammadchandra19/economy/internal/domain/record/v1"
	"github.com/muhammadchandra19/economy/internal/infrastructure/filestore"
	"github.com/muhammadchandra19/economy/internal/infrastructure/kafka/commandreader"
	"github.com/muhammadchandra19/economy/internal/infrastructure/kafka/eventpublisher"
	"github.com/muhammadchandra19/economy/internal/infrastructure/pebblestore"
	"github.com/muhammadchandra19/economy/internal/infrastructure/pgstore"
	"github.com/muhammadchandra19/economy/internal/infrastructure/redisstore"
	"github.com/muhammadchandra19/economy/internal/usecase/economy"
	"github.com/muhammadchandra19/economy/internal/usecase/market"
	"github.com/muhammadchandra19/economy/internal/usecase/record"
	"github.com/muhammadchandra19/economy/pkg/config"
	"github.com/muhammadchandra19/economy/pkg/httplib/healthcheck"
	"github.com/muhammadchandra19/economy/pkg/logger"
	"github.com/muhammadchandra19/economy/pkg/postgresql"
	"github.com/muhammadchandra19/economy/pkg/redis"
	"github.com/muhammadchandra19/economy/pkg/taskqueue"
)

// Daemon owns every long lived component of the economy process.
type Daemon struct {
	Config  *config.Config
	Queue   *taskqueue.Queue
	Usecase economyv1.Usecase
	// Engine is nil when kafka intake is disabled.
	Engine *engine.Engine
	// Admin is nil when no admin address is configured.
	Admin *admin.Server

	logger    logger.Interface
	driver    recordv1.Driver
	publisher eventv1.Publisher
	redis     redis.Client
	closers   []func() error
}

// Init builds the store driver, event sink, usecase and, when enabled, the command
// engine. On error, whatever was opened is closed again.
func Init(ctx context.Context, cfg *config.Config, log logger.Interface) (*Daemon, error) {
	d := &Daemon{
		Config: cfg,
		Queue:  taskqueue.New(log),
		logger: log,
	}

	if err := d.initStore(ctx); err != nil {
		d.close()
		return nil, err
	}
	if err := d.initPublisher(ctx); err != nil {
		d.close()
		return nil, err
	}
	d.registerUsecase()
	d.initEngine()
	d.initAdmin()

	return d, nil
}

func (d *Daemon) redisClient(ctx context.Context) (redis.Client, error) {
	if d.redis != nil {
		return d.redis, nil
	}

	client := redis.NewClient(d.logger, &d.Config.Redis)
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	d.redis = client
	d.closers = append(d.closers, func() error { return client.Disconnect(context.Background()) })
	return client, nil
}

func (d *Daemon) initStore(ctx context.Context) error {
	cfg := d.Config.Store

	switch cfg.Driver {
	case config.StoreFile:
		store, err := filestore.New(filestore.Options{
			UserDir:   cfg.UserDir,
			GuildDir:  cfg.GuildDir,
			GlobalDir: cfg.GlobalDir,
		}, d.logger)
		if err != nil {
			return err
		}
		d.driver = store

	case config.StoreRedis:
		client, err := d.redisClient(ctx)
		if err != nil {
			return err
		}
		d.driver = redisstore.New(client, cfg.RedisPrefix, d.logger)

	case config.StorePostgres:
		client, err := postgresql.NewClient(ctx, d.Config.Postgres)
		if err != nil {
			return err
		}
		d.closers = append(d.closers, func() error { client.Close(); return nil })

		if _, err := pgstore.NewMigrator(client, cfg.PGTable, d.logger).MigrateUp(ctx); err != nil {
			return err
		}
		d.driver = pgstore.New(client, cfg.PGTable, d.logger)

	case config.StorePebble:
		store, err := pebblestore.Open(cfg.PebblePath, d.logger)
		if err != nil {
			return err
		}
		d.closers = append(d.closers, store.Close)
		d.driver = store

	default:
		return fmt.Errorf("%w: unknown store driver %q", recordv1.ErrIO, cfg.Driver)
	}

	d.logger.Info("record store ready", logger.Field{Key: "driver", Value: string(cfg.Driver)})
	return nil
}

func (d *Daemon) initPublisher(ctx context.Context) error {
	switch d.Config.Events.Sink {
	case config.SinkKafka:
		d.publisher = eventpublisher.NewPublisher(eventpublisher.Config{
			Brokers: d.Config.Kafka.Brokers,
			Topic:   d.Config.Kafka.EventTopic,
		}, d.logger)
	case config.SinkRedis:
		client, err := d.redisClient(ctx)
		if err != nil {
			return err
		}
		d.publisher = redisstore.NewPublisher(client, d.Config.Events.RedisChannel, d.logger)
	default:
		d.publisher = eventv1.NopPublisher{}
	}
	return nil
}

func (d *Daemon) registerUsecase() {
	d.Usecase = economy.NewUsecase(
		d.Queue,
		d.driver,
		market.NewResolver(d.Config.Market.OrderExpire),
		economy.Options{
			MarketName: d.Config.Market.GlobalName,
			Publisher:  d.publisher,
		},
		d.logger,
	)
}

func (d *Daemon) initEngine() {
	if !d.Config.Kafka.Enabled {
		return
	}

	reader := commandreader.NewReader(commandreader.Config{
		Brokers: d.Config.Kafka.Brokers,
		Topic:   d.Config.Kafka.CommandTopic,
		GroupID: d.Config.Kafka.GroupID,
	}, d.logger)

	options := engine.DefaultEngineOptions()
	options.MaxInFlight = d.Config.Engine.MaxInFlight
	d.Engine = engine.NewEngine(d.Usecase, reader, d.logger, options)
}

func (d *Daemon) initAdmin() {
	if d.Config.Admin.Addr == "" {
		return
	}

	checks := map[string]healthcheck.Check{
		"store": d.checkStore,
		"queue": d.checkQueue,
	}
	d.Admin = admin.NewServer(d.Usecase, checks, admin.Config{
		Addr:           d.Config.Admin.Addr,
		AllowedOrigins: d.Config.Admin.AllowedOrigins,
	}, d.logger)
}

func (d *Daemon) checkStore(ctx context.Context) error {
	_, err := d.driver.Load(ctx, recordv1.Global(d.Config.Market.GlobalName))
	if errors.Is(err, recordv1.ErrNotFound) {
		return nil
	}
	return err
}

// checkQueue runs an empty task through the queue on its own key.
func (d *Daemon) checkQueue(ctx context.Context) error {
	_, err := taskqueue.Do(ctx, d.Queue, "health:check", func(context.Context) (struct{}, error) {
		return struct{}{}, nil
	})
	return err
}

// Warm loads the global market record through its queue key, creating it when
// missing. A corrupt record fails startup here instead of on the first command.
func (d *Daemon) Warm(ctx context.Context) error {
	name := d.Config.Market.GlobalName
	markets := record.NewRepository[recordv1.MarketRecord](d.driver, recordv1.KindGlobal, d.logger)

	books, err := taskqueue.Do(ctx, d.Queue, recordv1.Global(name).Key(), func(ctx context.Context) (int, error) {
		rec, created, err := markets.LoadOrNew(ctx, name, nil)
		if err != nil {
			return 0, err
		}
		if created {
			if err := markets.Save(ctx, name, rec); err != nil {
				return 0, err
			}
		}

		n := 0
		for _, byID := range rec.Books {
			n += len(byID)
		}
		return n, nil
	})
	if err != nil {
		return err
	}

	d.logger.InfoContext(ctx, "market record loaded",
		logger.Field{Key: "market", Value: name},
		logger.Field{Key: "books", Value: books},
	)
	return nil
}

// Start starts the admin server and the command engine when configured.
func (d *Daemon) Start(ctx context.Context) error {
	if d.Admin != nil {
		if err := d.Admin.Start(ctx); err != nil {
			return err
		}
	}
	if d.Engine != nil {
		d.Engine.Start(ctx)
	}
	return nil
}

// Shutdown stops intake, waits for queued tasks to drain and closes every backend.
// Backends are closed even when ctx ends before the queue drains.
func (d *Daemon) Shutdown(ctx context.Context) error {
	if d.Admin != nil {
		if err := d.Admin.Stop(ctx); err != nil {
			d.logger.ErrorContext(ctx, err, logger.Field{Key: "action", Value: "admin_stop"})
		}
	}
	if d.Engine != nil {
		if err := d.Engine.Stop(ctx); err != nil {
			d.logger.ErrorContext(ctx, err, logger.Field{Key: "action", Value: "engine_stop"})
		}
	}

	drainErr := d.drain(ctx)
	closeErr := d.close()
	if drainErr != nil {
		return errors.Join(drainErr, closeErr)
	}
	return closeErr
}

func (d *Daemon) drain(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for d.Queue.Len() > 0 {
		select {
		case <-ctx.Done():
			d.logger.WarnContext(ctx, "shutdown with queued tasks", logger.Field{Key: "keys", Value: d.Queue.Len()})
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func (d *Daemon) close() error {
	var firstErr error
	if d.publisher != nil {
		if err := d.publisher.Close(); err != nil {
			firstErr = err
		}
	}
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	d.closers = nil
	return firstErr
}
