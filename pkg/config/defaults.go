package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ccollicutt/routelog/pkg/parser"
)

// Default values for configuration.
const (
	DefaultMarker         = parser.DefaultMarker
	DefaultOutput         = string(OutputText)
	DefaultCollectTimeout = 5 * time.Second
	DefaultWorkerTimeout  = 5 * time.Minute
	DefaultWebhookTimeout = 10 * time.Second
)

// Environment variable names.
const (
	EnvMarker         = "ROUTELOG_MARKER"
	EnvCollectTimeout = "ROUTELOG_COLLECT_TIMEOUT"
	EnvWorkerTimeout  = "ROUTELOG_WORKER_TIMEOUT"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Marker:         DefaultMarker,
		Output:         DefaultOutput,
		CollectTimeout: DefaultCollectTimeout,
		WorkerTimeout:  DefaultWorkerTimeout,
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() error {
	if marker := os.Getenv(EnvMarker); marker != "" {
		c.Marker = marker
	}

	if v := os.Getenv(EnvCollectTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCollectTimeout, err)
		}
		c.CollectTimeout = d
	}

	if v := os.Getenv(EnvWorkerTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkerTimeout, err)
		}
		c.WorkerTimeout = d
	}

	return nil
}
