package config

import (
	"fmt"
	"time"

	"github.com/JaimeStill/inquest/pkg/envvar"
)

const (
	EnvSchedulerRunTimeout = "INQUEST_SCHEDULER_RUN_TIMEOUT"
	EnvSchedulerTimezone   = "INQUEST_SCHEDULER_TIMEZONE"
)

// SchedulerConfig bounds scrape runs and fixes the zone cron expressions use.
type SchedulerConfig struct {
	RunTimeout string `toml:"run_timeout"`
	Timezone   string `toml:"timezone"`
}

func (c *SchedulerConfig) RunTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RunTimeout)
	return d
}

// Location returns the configured cron time zone.
func (c *SchedulerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *SchedulerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *SchedulerConfig) Merge(overlay *SchedulerConfig) {
	if overlay.RunTimeout != "" {
		c.RunTimeout = overlay.RunTimeout
	}
	if overlay.Timezone != "" {
		c.Timezone = overlay.Timezone
	}
}

func (c *SchedulerConfig) loadDefaults() {
	if c.RunTimeout == "" {
		c.RunTimeout = "30m"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
}

func (c *SchedulerConfig) loadEnv() {
	envvar.String(EnvSchedulerRunTimeout, &c.RunTimeout)
	envvar.String(EnvSchedulerTimezone, &c.Timezone)
}

func (c *SchedulerConfig) validate() error {
	if _, err := time.ParseDuration(c.RunTimeout); err != nil {
		return fmt.Errorf("invalid run_timeout: %w", err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}
	return nil
}
