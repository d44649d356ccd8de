// Package pagination pages listing endpoints and the clients that walk them.
package pagination

import (
	"errors"

	"github.com/JaimeStill/inquest/pkg/envvar"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Config bounds the page sizes a listing will serve.
type Config struct {
	DefaultPageSize int `toml:"default_page_size"`
	MaxPageSize     int `toml:"max_page_size"`
}

// ConfigEnv names the environment variables that override Config.
type ConfigEnv struct {
	DefaultPageSize string
	MaxPageSize     string
}

func (c *Config) Finalize(env *ConfigEnv) error {
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = defaultPageSize
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = maxPageSize
	}
	if env != nil {
		envvar.Int(env.DefaultPageSize, &c.DefaultPageSize)
		envvar.Int(env.MaxPageSize, &c.MaxPageSize)
	}

	switch {
	case c.DefaultPageSize < 1, c.MaxPageSize < 1:
		return errors.New("page sizes must be positive")
	case c.DefaultPageSize > c.MaxPageSize:
		return errors.New("default_page_size cannot exceed max_page_size")
	}
	return nil
}

func (c *Config) Merge(overlay *Config) {
	if overlay.DefaultPageSize != 0 {
		c.DefaultPageSize = overlay.DefaultPageSize
	}
	if overlay.MaxPageSize != 0 {
		c.MaxPageSize = overlay.MaxPageSize
	}
}
