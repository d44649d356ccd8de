package fetch

import (
	"context"
	"net/http"
	"time"

	"github.com/JaimeStill/inquest/internal/config"
)

// Config parameterizes one Client. A Client serves one scrape run.
type Config struct {
	UserAgent     string
	Timeout       time.Duration
	RequestDelay  time.Duration
	MaxAttempts   int
	MaxBodySize   int64
	RenderTimeout time.Duration
	Extractors    []string

	// BackoffBase is the wait after the first failed attempt; later waits
	// double. Defaults to one second, giving 2^attempt seconds.
	BackoffBase time.Duration

	// Robots is shared across runs. Nil skips robots.txt checks.
	Robots *Robots

	HTTPClient *http.Client
	Sleep      func(ctx context.Context, d time.Duration) error
}

// FromSettings maps the [fetch] section onto a Config.
func FromSettings(c *config.FetchConfig) Config {
	return Config{
		UserAgent:     c.UserAgent,
		Timeout:       c.TimeoutDuration(),
		RequestDelay:  c.RequestDelayDuration(),
		MaxAttempts:   c.MaxAttempts,
		MaxBodySize:   c.MaxBodySizeBytes(),
		RenderTimeout: c.RenderTimeoutDuration(),
		Extractors:    c.Extractors,
	}
}

func (c *Config) applyDefaults() {
	if c.UserAgent == "" {
		c.UserAgent = "InquestMonitor/1.0"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RequestDelay < 0 {
		c.RequestDelay = 0
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.MaxBodySize <= 0 {
		c.MaxBodySize = 20 * 1024 * 1024
	}
	if c.RenderTimeout <= 0 {
		c.RenderTimeout = 60 * time.Second
	}
	if len(c.Extractors) == 0 {
		c.Extractors = []string{ExtractorLedongthuc, ExtractorPdfcpu}
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = time.Second
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
}
