package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime configuration for the API and the email consumer.
type Config struct {
	Port        string `env:"PORT" envDefault:"8000"`
	LogMode     string `env:"LOG_MODE" envDefault:"dev"`
	LogHashSalt string `env:"LOG_HASH_SALT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"game-exchange"`

	Store   StoreConfig
	Mongo   MongoConfig
	Notify  NotifyConfig
	JWT     JWTConfig
	Metrics MetricsConfig
	Offers  OffersConfig
}

type StoreConfig struct {
	Driver      string        `env:"STORE_DRIVER" envDefault:"memory"`
	DatabaseURL string        `env:"DATABASE_URL"`
	SQLitePath  string        `env:"SQLITE_PATH" envDefault:"game-exchange.db"`
	Timeout     time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
}

// MongoConfig enables the Mongo status history when URI is set.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DATABASE" envDefault:"game_exchange"`
}

type NotifyConfig struct {
	Driver       string   `env:"NOTIFY_DRIVER" envDefault:"none"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"kafka:9092"`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"email_notifications"`
	KafkaGroupID string   `env:"KAFKA_GROUP_ID" envDefault:"email-consumer"`
	RedisAddr    string   `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisChannel string   `env:"REDIS_CHANNEL" envDefault:"email_notifications"`
	Buffer       int      `env:"NOTIFY_BUFFER" envDefault:"256"`
}

type JWTConfig struct {
	Secret   string `env:"JWT_SECRET"`
	TTLHours int    `env:"JWT_TTL_HOURS" envDefault:"24"`
	Issuer   string `env:"JWT_ISSUER" envDefault:"game-exchange"`
}

type MetricsConfig struct {
	Enabled      bool   `env:"METRICS_ENABLED" envDefault:"true"`
	OtlpEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

type OffersConfig struct {
	// RejectSelfTrade refuses offers whose requested game the caller already owns.
	RejectSelfTrade bool `env:"OFFER_REJECT_SELF_TRADE" envDefault:"false"`
}

// Load reads configuration from the environment and validates it.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case "memory", "sqlite":
	case "postgres":
		if strings.TrimSpace(c.Store.DatabaseURL) == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for STORE_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver))
	}
	switch c.Notify.Driver {
	case "none", "log", "redis":
	case "kafka":
		if len(c.Notify.KafkaBrokers) == 0 {
			errs = append(errs, errors.New("KAFKA_BROKERS is required for NOTIFY_DRIVER=kafka"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown NOTIFY_DRIVER %q", c.Notify.Driver))
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWT.TTLHours <= 0 {
		errs = append(errs, errors.New("JWT_TTL_HOURS must be positive"))
	}
	if c.Store.Timeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// LoadConsumer reads configuration for the email consumer, which needs only
// the Kafka settings.
func LoadConsumer() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.ValidateConsumer(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) ValidateConsumer() error {
	var errs []error
	if len(c.Notify.KafkaBrokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required"))
	}
	if strings.TrimSpace(c.Notify.KafkaTopic) == "" {
		errs = append(errs, errors.New("KAFKA_TOPIC is required"))
	}
	if strings.TrimSpace(c.Notify.KafkaGroupID) == "" {
		errs = append(errs, errors.New("KAFKA_GROUP_ID is required"))
	}
	return errors.Join(errs...)
}

// JWTTTL returns the access token lifetime.
func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWT.TTLHours) * time.Hour
}
