package config

import (
	"fmt"

	"github.com/kbukum/parmap/logger"
)

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// EngineConfig contains the engine defaults a caller can load once and reuse
// for every mapping operation.
//
// Parallelism keeps the engine's resolution semantics: 0 means "use all
// available execution units", a negative value -k means "all but k".
type EngineConfig struct {
	Name        string          `yaml:"name" mapstructure:"name"`
	Environment string          `yaml:"environment" mapstructure:"environment"`
	Debug       bool            `yaml:"debug" mapstructure:"debug"`
	Parallelism int             `yaml:"parallelism" mapstructure:"parallelism"`
	BatchSize   int             `yaml:"batch_size" mapstructure:"batch_size"`
	Logging     logger.Config   `yaml:"logging" mapstructure:"logging"`
	Telemetry   TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults applies default values to the engine configuration.
func (c *EngineConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "parmap"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = "localhost:4318"
	}
	if c.Telemetry.SampleRate == 0 {
		c.Telemetry.SampleRate = 1.0
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the engine configuration.
func (c *EngineConfig) Validate() error {
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, v := range validEnvs {
		if c.Environment == v {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config.environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}
	// BatchSize 0 means "default to resolved parallelism"; negatives never
	// normalize to anything usable.
	if c.BatchSize < 0 {
		return fmt.Errorf("config.batch_size must not be negative (got: %d)", c.BatchSize)
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return fmt.Errorf("config.telemetry.sample_rate must be in [0, 1] (got: %g)", c.Telemetry.SampleRate)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
