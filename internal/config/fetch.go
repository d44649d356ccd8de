package config

import (
	"fmt"
	"time"

	"github.com/docker/go-units"

	"github.com/JaimeStill/inquest/pkg/envvar"
)

const (
	EnvFetchUserAgent     = "INQUEST_FETCH_USER_AGENT"
	EnvFetchTimeout       = "INQUEST_FETCH_TIMEOUT"
	EnvFetchRequestDelay  = "INQUEST_FETCH_REQUEST_DELAY"
	EnvFetchMaxAttempts   = "INQUEST_FETCH_MAX_ATTEMPTS"
	EnvFetchMaxBodySize   = "INQUEST_FETCH_MAX_BODY_SIZE"
	EnvFetchIgnoreRobots  = "INQUEST_FETCH_IGNORE_ROBOTS"
	EnvFetchRenderTimeout = "INQUEST_FETCH_RENDER_TIMEOUT"
	EnvFetchExtractors    = "INQUEST_FETCH_EXTRACTORS"
)

// FetchConfig holds transport defaults shared by every scrape run.
// Per-source adapter configuration may override RequestDelay.
type FetchConfig struct {
	UserAgent     string   `toml:"user_agent"`
	Timeout       string   `toml:"timeout"`
	RequestDelay  string   `toml:"request_delay"`
	MaxAttempts   int      `toml:"max_attempts"`
	MaxBodySize   string   `toml:"max_body_size"`
	IgnoreRobots  bool     `toml:"ignore_robots"`
	RenderTimeout string   `toml:"render_timeout"`
	Extractors    []string `toml:"extractors"`
}

func (c *FetchConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

func (c *FetchConfig) RequestDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.RequestDelay)
	return d
}

func (c *FetchConfig) RenderTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RenderTimeout)
	return d
}

// MaxBodySizeBytes returns MaxBodySize in bytes.
func (c *FetchConfig) MaxBodySizeBytes() int64 {
	size, err := units.RAMInBytes(c.MaxBodySize)
	if err != nil {
		return 20 * 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *FetchConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. IgnoreRobots always applies.
func (c *FetchConfig) Merge(overlay *FetchConfig) {
	if overlay.UserAgent != "" {
		c.UserAgent = overlay.UserAgent
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.RequestDelay != "" {
		c.RequestDelay = overlay.RequestDelay
	}
	if overlay.MaxAttempts != 0 {
		c.MaxAttempts = overlay.MaxAttempts
	}
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}
	if overlay.RenderTimeout != "" {
		c.RenderTimeout = overlay.RenderTimeout
	}
	if overlay.Extractors != nil {
		c.Extractors = overlay.Extractors
	}
	c.IgnoreRobots = overlay.IgnoreRobots
}

func (c *FetchConfig) loadDefaults() {
	if c.UserAgent == "" {
		c.UserAgent = "InquestMonitor/1.0 (+https://github.com/JaimeStill/inquest)"
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.RequestDelay == "" {
		c.RequestDelay = "2s"
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "20MB"
	}
	if c.RenderTimeout == "" {
		c.RenderTimeout = "60s"
	}
	if len(c.Extractors) == 0 {
		c.Extractors = []string{"ledongthuc", "pdfcpu"}
	}
}

func (c *FetchConfig) loadEnv() {
	envvar.String(EnvFetchUserAgent, &c.UserAgent)
	envvar.String(EnvFetchTimeout, &c.Timeout)
	envvar.String(EnvFetchRequestDelay, &c.RequestDelay)
	envvar.PositiveInt(EnvFetchMaxAttempts, &c.MaxAttempts)
	envvar.String(EnvFetchMaxBodySize, &c.MaxBodySize)
	envvar.Bool(EnvFetchIgnoreRobots, &c.IgnoreRobots)
	envvar.String(EnvFetchRenderTimeout, &c.RenderTimeout)
	envvar.List(EnvFetchExtractors, &c.Extractors)
}

func (c *FetchConfig) validate() error {
	durations := map[string]string{
		"timeout":        c.Timeout,
		"request_delay":  c.RequestDelay,
		"render_timeout": c.RenderTimeout,
	}
	for name, v := range durations {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be positive")
	}
	if _, err := units.RAMInBytes(c.MaxBodySize); err != nil {
		return fmt.Errorf("invalid max_body_size: %w", err)
	}
	return nil
}
