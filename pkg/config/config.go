package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MustLoad loads the configuration from environment variables and .env file.
func MustLoad[T any](cfg T) {
	_ = godotenv.Load() // Load environment variables from .env file

	env.Must(cfg, env.Parse(cfg))
}

// Load loads the configuration from environment variables and .env file.
func Load[T any](cfg T) error {
	if err := godotenv.Load(); err != nil {
		return err // Return error if .env file loading fails
	}

	if err := env.Parse(cfg); err != nil {
		return err // Return error if environment variable parsing fails
	}

	return nil // Return nil if everything is successful
}

// Config holds the configuration for the matching core.
type Config struct {
	Pair    string `env:"PAIR,required"` // Trading pair, e.g., BTC/USD
	Workers int    `env:"WORKERS" envDefault:"0"`

	KafkaConfig          `envPrefix:"KAFKA_"` // Order feed configuration
	MatchPublisherConfig `envPrefix:"MATCH_"` // Match event publishing configuration
	RedisConfig          `envPrefix:"REDIS_"` // Redis configuration
	SnapshotConfig       `envPrefix:"SNAPSHOT_"`
	LogConfig            `envPrefix:"LOG_"`
}

// KafkaConfig holds the configuration for the Kafka order feed consumer.
type KafkaConfig struct {
	Topic   string   `env:"TOPIC,required"`
	GroupID string   `env:"GROUP_ID" envDefault:"default_group"`
	Brokers []string `env:"BROKER,required"`
}

// MatchPublisherConfig holds the configuration for the match event producer.
type MatchPublisherConfig struct {
	Topic   string   `env:"TOPIC,required"`
	Brokers []string `env:"BROKER,required"`
}

// RedisConfig holds the configuration for the Redis client.
type RedisConfig struct {
	Addrs    string `env:"ADDRESS,required"` // Redis address (host:port), used as a single address
	Password string `env:"PASSWORD" envDefault:""`
	Username string `env:"USERNAME" envDefault:""`
	DB       int    `env:"DB" envDefault:"0"`
}

// SnapshotConfig holds the snapshot cadence configuration.
type SnapshotConfig struct {
	IntervalSeconds int   `env:"INTERVAL_SECONDS" envDefault:"30"`
	OrderDelta      int64 `env:"ORDER_DELTA" envDefault:"1000"`
}

// LogConfig holds the logger configuration.
type LogConfig struct {
	Level       string   `env:"LEVEL" envDefault:"info"`
	OutputPaths []string `env:"OUTPUT_PATHS" envDefault:"stderr"`
	CallerSkip  int      `env:"CALLER_SKIP" envDefault:"1"`
}
