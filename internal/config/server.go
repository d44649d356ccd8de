package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/docker/go-units"

	"github.com/JaimeStill/inquest/pkg/envvar"
)

const (
	EnvServerHost            = "INQUEST_SERVER_HOST"
	EnvServerPort            = "INQUEST_SERVER_PORT"
	EnvServerReadTimeout     = "INQUEST_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout    = "INQUEST_SERVER_WRITE_TIMEOUT"
	EnvServerShutdownTimeout = "INQUEST_SERVER_SHUTDOWN_TIMEOUT"
	EnvServerMaxHeaderSize   = "INQUEST_SERVER_MAX_HEADER_SIZE"
)

// ServerConfig controls the API listener. ShutdownTimeout bounds how long
// in-flight requests may drain once shutdown starts.
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
	MaxHeaderSize   string `toml:"max_header_size"`
}

func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ReadTimeout)
	return d
}

func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.WriteTimeout)
	return d
}

func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// MaxHeaderBytes returns MaxHeaderSize in bytes, or 0 for the net/http
// default when unset.
func (c *ServerConfig) MaxHeaderBytes() int {
	n, err := units.RAMInBytes(c.MaxHeaderSize)
	if err != nil {
		return 0
	}
	return int(n)
}

func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	for dst, src := range map[*string]string{
		&c.ReadTimeout:     overlay.ReadTimeout,
		&c.WriteTimeout:    overlay.WriteTimeout,
		&c.ShutdownTimeout: overlay.ShutdownTimeout,
		&c.MaxHeaderSize:   overlay.MaxHeaderSize,
	} {
		if src != "" {
			*dst = src
		}
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = "1m"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "2m"
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
}

func (c *ServerConfig) loadEnv() {
	envvar.String(EnvServerHost, &c.Host)
	envvar.Int(EnvServerPort, &c.Port)
	envvar.Duration(EnvServerReadTimeout, &c.ReadTimeout)
	envvar.Duration(EnvServerWriteTimeout, &c.WriteTimeout)
	envvar.Duration(EnvServerShutdownTimeout, &c.ShutdownTimeout)
	envvar.String(EnvServerMaxHeaderSize, &c.MaxHeaderSize)
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Port)
	}
	for key, v := range map[string]string{
		"read_timeout":     c.ReadTimeout,
		"write_timeout":    c.WriteTimeout,
		"shutdown_timeout": c.ShutdownTimeout,
	} {
		if d, err := time.ParseDuration(v); err != nil || d <= 0 {
			return fmt.Errorf("server %s %q must be a positive duration", key, v)
		}
	}
	if c.MaxHeaderSize != "" {
		if _, err := units.RAMInBytes(c.MaxHeaderSize); err != nil {
			return fmt.Errorf("server max_header_size: %w", err)
		}
	}
	return nil
}
