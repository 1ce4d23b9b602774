// Package config provides runtime configuration values for the simulator.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds configuration knobs for the HTTP server, the marketplace and
// the optional order archive.
type Config struct {
	HTTPAddr             string        `env:"HTTP_ADDR"               envDefault:":8080"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT"        envDefault:"15s"`
	QueueSizePerProducer int           `env:"QUEUE_SIZE_PER_PRODUCER" envDefault:"8"`
	Verbose              bool          `env:"LOG_VERBOSE"             envDefault:"false"`

	// Order archive. Empty values disable the corresponding sink.
	DatabaseURL   string `env:"DATABASE_URL"`
	NatsURL       string `env:"NATS_URL"`
	StanClusterID string `env:"STAN_CLUSTER_ID" envDefault:"marketplace-cluster"`
	StanClientID  string `env:"STAN_CLIENT_ID"`
	StanSubject   string `env:"STAN_SUBJECT"    envDefault:"orders"`
}

// Load collects configuration from environment with defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env parsing cannot express.
func (c Config) Validate() error {
	if c.QueueSizePerProducer <= 0 {
		return fmt.Errorf("QUEUE_SIZE_PER_PRODUCER must be positive, got %d", c.QueueSizePerProducer)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}
