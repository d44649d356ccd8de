package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/JaimeStill/inquest/pkg/envvar"
)

const (
	EnvProcessorBatchSize = "INQUEST_PROCESSOR_BATCH_SIZE"
	EnvProcessorThreshold = "INQUEST_PROCESSOR_THRESHOLD"
	EnvProcessorWorkers   = "INQUEST_PROCESSOR_WORKERS"
	EnvProcessorSchedule  = "INQUEST_PROCESSOR_SCHEDULE"
	EnvProcessorTimeout   = "INQUEST_PROCESSOR_TIMEOUT"
)

// ProcessorConfig bounds batch passes. An empty Schedule disables the
// background combined pass.
type ProcessorConfig struct {
	BatchSize int     `toml:"batch_size"`
	Threshold float64 `toml:"threshold"`
	Workers   int     `toml:"workers"`
	Schedule  string  `toml:"schedule"`
	Timeout   string  `toml:"timeout"`
}

func (c *ProcessorConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ProcessorConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ProcessorConfig) Merge(overlay *ProcessorConfig) {
	if overlay.BatchSize != 0 {
		c.BatchSize = overlay.BatchSize
	}
	if overlay.Threshold != 0 {
		c.Threshold = overlay.Threshold
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	if overlay.Schedule != "" {
		c.Schedule = overlay.Schedule
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *ProcessorConfig) loadDefaults() {
	if c.BatchSize == 0 {
		c.BatchSize = 10
	}
	if c.Threshold == 0 {
		c.Threshold = 0.7
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
	if c.Timeout == "" {
		c.Timeout = "1h"
	}
}

func (c *ProcessorConfig) loadEnv() {
	envvar.PositiveInt(EnvProcessorBatchSize, &c.BatchSize)
	envvar.Float(EnvProcessorThreshold, &c.Threshold)
	envvar.PositiveInt(EnvProcessorWorkers, &c.Workers)
	envvar.String(EnvProcessorSchedule, &c.Schedule)
	envvar.String(EnvProcessorTimeout, &c.Timeout)
}

func (c *ProcessorConfig) validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be positive")
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be within [0, 1]: %v", c.Threshold)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if c.Schedule != "" {
		if _, err := cron.ParseStandard(c.Schedule); err != nil {
			return fmt.Errorf("invalid schedule: %w", err)
		}
	}
	return nil
}
