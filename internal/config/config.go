// Package config loads the service configuration. Values come from a base
// TOML file, an optional config.<env>.toml overlay next to it, and INQUEST_*
// environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/inquest/pkg/database"
	"github.com/JaimeStill/inquest/pkg/envvar"
	"github.com/JaimeStill/inquest/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvInquestEnv             = "INQUEST_ENV"
	EnvInquestShutdownTimeout = "INQUEST_SHUTDOWN_TIMEOUT"
	EnvInquestVersion         = "INQUEST_VERSION"
	EnvInquestSourcesFile     = "INQUEST_SOURCES_FILE"

	// EnvDatabasePrefix prefixes the database overrides: INQUEST_DB_HOST,
	// INQUEST_DB_PASSWORD, and so on.
	EnvDatabasePrefix = "INQUEST_DB"
)

var storageEnv = &storage.Env{
	Backend:          "INQUEST_STORAGE_BACKEND",
	ContainerName:    "INQUEST_STORAGE_CONTAINER_NAME",
	ConnectionString: "INQUEST_STORAGE_CONNECTION_STRING",
	Directory:        "INQUEST_STORAGE_DIRECTORY",
}

type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Logging         LoggingConfig   `toml:"logging"`
	Fetch           FetchConfig     `toml:"fetch"`
	Scheduler       SchedulerConfig `toml:"scheduler"`
	Processor       ProcessorConfig `toml:"processor"`
	LLM             LLMConfig       `toml:"llm"`
	Prompts         PromptsConfig   `toml:"prompts"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
	SourcesFile     string          `toml:"sources_file"`
}

// Env names the deployment, "local" unless INQUEST_ENV is set.
func (c *Config) Env() string {
	if env, ok := envvar.Lookup(EnvInquestEnv); ok {
		return env
	}
	return "local"
}

func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

func Load() (*Config, error) {
	return LoadFile(BaseConfigFile)
}

// LoadFile reads path and its environment overlay. Either file may be
// absent, leaving defaults and the environment to supply every value.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}

	for _, file := range layers(path) {
		layer, err := read(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		cfg.Merge(layer)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}
	return cfg, nil
}

// Merge copies every non-zero value of overlay onto c.
func (c *Config) Merge(overlay *Config) {
	for dst, src := range map[*string]string{
		&c.ShutdownTimeout: overlay.ShutdownTimeout,
		&c.Version:         overlay.Version,
		&c.SourcesFile:     overlay.SourcesFile,
	} {
		if src != "" {
			*dst = src
		}
	}

	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Logging.Merge(&overlay.Logging)
	c.Fetch.Merge(&overlay.Fetch)
	c.Scheduler.Merge(&overlay.Scheduler)
	c.Processor.Merge(&overlay.Processor)
	c.LLM.Merge(&overlay.LLM)
	c.Prompts.Merge(&overlay.Prompts)
}

func (c *Config) finalize() error {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.SourcesFile == "" {
		c.SourcesFile = "sources.yaml"
	}

	envvar.Duration(EnvInquestShutdownTimeout, &c.ShutdownTimeout)
	envvar.String(EnvInquestVersion, &c.Version)
	envvar.String(EnvInquestSourcesFile, &c.SourcesFile)

	if d, err := time.ParseDuration(c.ShutdownTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid shutdown_timeout %q", c.ShutdownTimeout)
	}

	sections := []struct {
		name     string
		finalize func() error
	}{
		{"server", c.Server.Finalize},
		{"database", func() error { return c.Database.Finalize(EnvDatabasePrefix) }},
		{"storage", func() error { return c.Storage.Finalize(storageEnv) }},
		{"api", c.API.Finalize},
		{"logging", c.Logging.Finalize},
		{"fetch", c.Fetch.Finalize},
		{"scheduler", c.Scheduler.Finalize},
		{"processor", c.Processor.Finalize},
		{"llm", c.LLM.Finalize},
		{"prompts", c.Prompts.Finalize},
	}
	for _, s := range sections {
		if err := s.finalize(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

// layers lists the base file followed by the INQUEST_ENV overlay beside it.
func layers(base string) []string {
	files := []string{base}
	if env, ok := envvar.Lookup(EnvInquestEnv); ok {
		files = append(files, filepath.Join(filepath.Dir(base), fmt.Sprintf(OverlayConfigPattern, env)))
	}
	return files
}

func read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}
