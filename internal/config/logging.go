package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/inquest/pkg/envvar"
)

const (
	EnvLogLevel  = "INQUEST_LOG_LEVEL"
	EnvLogFormat = "INQUEST_LOG_FORMAT"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

// LoggingConfig selects the root slog handler.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// SlogLevel returns Level as a slog.Level.
func (c *LoggingConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *LoggingConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *LoggingConfig) Merge(overlay *LoggingConfig) {
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
}

func (c *LoggingConfig) loadDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = LogFormatText
	}
}

func (c *LoggingConfig) loadEnv() {
	envvar.String(EnvLogLevel, &c.Level)
	envvar.String(EnvLogFormat, &c.Format)
	c.Level = strings.ToLower(c.Level)
	c.Format = strings.ToLower(c.Format)
}

func (c *LoggingConfig) validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid level: %q", c.Level)
	}
	switch c.Format {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("invalid format: %q", c.Format)
	}
	return nil
}
