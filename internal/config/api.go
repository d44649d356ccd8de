package config

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/inquest/pkg/envvar"
	"github.com/JaimeStill/inquest/pkg/middleware"
	"github.com/JaimeStill/inquest/pkg/pagination"
)

const (
	EnvAPIBasePath    = "INQUEST_API_BASE_PATH"
	EnvAPIMetricsPath = "INQUEST_API_METRICS_PATH"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "INQUEST_CORS_ENABLED",
	Origins:          "INQUEST_CORS_ORIGINS",
	AllowedMethods:   "INQUEST_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "INQUEST_CORS_ALLOWED_HEADERS",
	AllowCredentials: "INQUEST_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "INQUEST_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "INQUEST_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "INQUEST_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig places the API module and metrics endpoint and carries the
// CORS and listing page settings.
type APIConfig struct {
	BasePath    string                `toml:"base_path"`
	MetricsPath string                `toml:"metrics_path"`
	CORS        middleware.CORSConfig `toml:"cors"`
	Pagination  pagination.Config     `toml:"pagination"`
}

func (c *APIConfig) Finalize() error {
	paths := []struct {
		name, env, fallback string
		dst                 *string
	}{
		{"base_path", EnvAPIBasePath, "/api", &c.BasePath},
		{"metrics_path", EnvAPIMetricsPath, "/metrics", &c.MetricsPath},
	}
	for _, p := range paths {
		if *p.dst == "" {
			*p.dst = p.fallback
		}
		envvar.String(p.env, p.dst)
		if !strings.HasPrefix(*p.dst, "/") || strings.Count(*p.dst, "/") != 1 {
			return fmt.Errorf("%s must be a single-level path: %q", p.name, *p.dst)
		}
	}

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

func (c *APIConfig) Merge(overlay *APIConfig) {
	for dst, src := range map[*string]string{
		&c.BasePath:    overlay.BasePath,
		&c.MetricsPath: overlay.MetricsPath,
	} {
		if src != "" {
			*dst = src
		}
	}
	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}
