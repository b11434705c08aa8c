package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the process configuration, loaded from the environment
// with an optional .env overlay.
type Config struct {
	Server   ServerConfig `envPrefix:"SERVER_"`
	Kafka    KafkaConfig  `envPrefix:"KAFKA_"`
	LogLevel string       `env:"LOG_LEVEL" envDefault:"info"`
}

type ServerConfig struct {
	Address string `env:"ADDRESS" envDefault:"0.0.0.0"`
	Port    int    `env:"PORT" envDefault:"9001"`
	Workers uint   `env:"WORKERS" envDefault:"10"`
}

type KafkaConfig struct {
	Enabled bool     `env:"ENABLED" envDefault:"false"`
	Brokers []string `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic   string   `env:"TOPIC" envDefault:"nyx.events"`
}

// Load reads the configuration from environment variables, merging in
// a .env file when one is present.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
