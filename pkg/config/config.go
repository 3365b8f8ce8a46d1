package config

import (
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/muhammadchandra19/economy/pkg/errors"
	"github.com/muhammadchandra19/economy/pkg/postgresql"
	"github.com/muhammadchandra19/economy/pkg/redis"
)

// MustLoad loads the configuration from environment variables and .env file.
func MustLoad[T any](cfg T) {
	_ = godotenv.Load() // Load environment variables from .env file

	env.Must(cfg, env.Parse(cfg))
}

// Load loads the configuration from environment variables and an optional .env file.
func Load[T any](cfg T, files ...string) error {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return err
	}

	return env.Parse(cfg)
}

// StoreDriver names a persisted record backend.
type StoreDriver string

const (
	// StoreFile keeps one JSON file per record under a directory per kind.
	StoreFile StoreDriver = "file"
	// StoreRedis keeps records as JSON strings in redis.
	StoreRedis StoreDriver = "redis"
	// StorePostgres keeps records as jsonb rows.
	StorePostgres StoreDriver = "postgres"
	// StorePebble keeps records in an embedded pebble database.
	StorePebble StoreDriver = "pebble"
)

// Config holds the configuration for the economy daemon.
type Config struct {
	App      AppConfig         `envPrefix:"APP_"`
	Market   MarketConfig      `envPrefix:"MARKET_"`
	Store    StoreConfig       `envPrefix:"STORE_"`
	Redis    redis.Config      `envPrefix:"REDIS_"`
	Postgres postgresql.Config `envPrefix:"POSTGRES_"`
	Kafka    KafkaConfig       `envPrefix:"KAFKA_"`
	Events   EventsConfig      `envPrefix:"EVENTS_"`
	Engine   EngineConfig      `envPrefix:"ENGINE_"`
	Admin    AdminConfig       `envPrefix:"ADMIN_"`
}

// EventSink names where order events are published.
type EventSink string

const (
	// SinkNone drops events.
	SinkNone EventSink = "none"
	// SinkKafka writes events to the kafka event topic.
	SinkKafka EventSink = "kafka"
	// SinkRedis publishes events on a redis channel.
	SinkRedis EventSink = "redis"
)

// EventsConfig selects the order event sink.
type EventsConfig struct {
	Sink         EventSink `env:"SINK" envDefault:"none"`
	RedisChannel string    `env:"REDIS_CHANNEL" envDefault:"economy.events"`
}

// AppConfig holds process level settings.
type AppConfig struct {
	Name        string `env:"NAME" envDefault:"economyd"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// MarketConfig holds order book settings.
type MarketConfig struct {
	OrderExpire time.Duration `env:"ORDER_EXPIRE" envDefault:"720h"`
	GlobalName  string        `env:"GLOBAL_NAME" envDefault:"market"`
}

// StoreConfig selects and configures the record backend.
type StoreConfig struct {
	Driver      StoreDriver `env:"DRIVER" envDefault:"file"`
	UserDir     string      `env:"USER_DIR" envDefault:"data/users"`
	GuildDir    string      `env:"GUILD_DIR" envDefault:"data/guilds"`
	GlobalDir   string      `env:"GLOBAL_DIR" envDefault:"data/global"`
	PebblePath  string      `env:"PEBBLE_PATH" envDefault:"data/pebble"`
	RedisPrefix string      `env:"REDIS_PREFIX" envDefault:"economy:"`
	PGTable     string      `env:"PG_TABLE" envDefault:"economy_records"`
}

// KafkaConfig holds the configuration for the command intake and event stream.
type KafkaConfig struct {
	Enabled      bool     `env:"ENABLED" envDefault:"false"`
	Brokers      []string `env:"BROKERS" envDefault:"localhost:9092"`
	CommandTopic string   `env:"COMMAND_TOPIC" envDefault:"economy.commands"`
	EventTopic   string   `env:"EVENT_TOPIC" envDefault:"economy.events"`
	GroupID      string   `env:"GROUP_ID" envDefault:"economyd"`
}

// EngineConfig bounds the command engine.
type EngineConfig struct {
	MaxInFlight     int64         `env:"MAX_IN_FLIGHT" envDefault:"64"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// AdminConfig holds the read-only HTTP surface. An empty address disables it.
type AdminConfig struct {
	Addr           string   `env:"ADDR"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*"`
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	base := errors.NewBaseError()
	code := string(errors.ConfigValidationError)

	if c.Market.OrderExpire <= 0 {
		base.AddErrorDetails(errors.NewErrorDetails("order expire window must be positive", code, "MARKET_ORDER_EXPIRE"))
	}
	if strings.TrimSpace(c.Market.GlobalName) == "" {
		base.AddErrorDetails(errors.NewErrorDetails("global record name is empty", code, "MARKET_GLOBAL_NAME"))
	}

	switch c.Store.Driver {
	case StoreFile, StoreRedis, StorePostgres, StorePebble:
	default:
		base.AddErrorDetails(errors.NewErrorDetails("unknown store driver "+string(c.Store.Driver), code, "STORE_DRIVER"))
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			base.AddErrorDetails(errors.NewErrorDetails("kafka brokers are empty", code, "KAFKA_BROKERS"))
		}
		if c.Kafka.CommandTopic == "" {
			base.AddErrorDetails(errors.NewErrorDetails("kafka command topic is empty", code, "KAFKA_COMMAND_TOPIC"))
		}
	}

	switch c.Events.Sink {
	case SinkNone, SinkRedis:
	case SinkKafka:
		if len(c.Kafka.Brokers) == 0 || c.Kafka.EventTopic == "" {
			base.AddErrorDetails(errors.NewErrorDetails("kafka event sink needs brokers and a topic", code, "KAFKA_EVENT_TOPIC"))
		}
	default:
		base.AddErrorDetails(errors.NewErrorDetails("unknown event sink "+string(c.Events.Sink), code, "EVENTS_SINK"))
	}

	if c.Engine.MaxInFlight < 1 {
		base.AddErrorDetails(errors.NewErrorDetails("max in flight must be at least 1", code, "ENGINE_MAX_IN_FLIGHT"))
	}

	if base.HasDetails() {
		return base
	}
	return nil
}
