package database

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/JaimeStill/inquest/pkg/envvar"
)

// Config describes the PostgreSQL connection and pool. A non-empty DSN
// replaces the discrete connection fields.
type Config struct {
	DSN             string `toml:"dsn"`
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	Name            string `toml:"name"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	SSLMode         string `toml:"ssl_mode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime string `toml:"conn_max_lifetime"`
	ConnTimeout     string `toml:"conn_timeout"`
	AutoMigrate     bool   `toml:"auto_migrate"`
}

func (c *Config) ConnMaxLifetimeDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnMaxLifetime)
	return d
}

// ConnTimeoutDuration bounds each readiness ping.
func (c *Config) ConnTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnTimeout)
	return d
}

// URL returns the postgres:// connection string used by both the pgx
// driver and golang-migrate.
func (c *Config) URL() string {
	if c.DSN != "" {
		return c.DSN
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// Finalize fills defaults, applies environment overrides named
// <prefix>_DSN, <prefix>_HOST, and so on, then validates. An empty prefix
// skips the environment.
func (c *Config) Finalize(prefix string) error {
	c.loadDefaults()
	if prefix != "" {
		c.loadEnv(prefix)
	}
	return c.validate()
}

// Merge takes every non-zero field of overlay. AutoMigrate can only be
// switched on.
func (c *Config) Merge(overlay *Config) {
	for dst, src := range map[*string]string{
		&c.DSN:             overlay.DSN,
		&c.Host:            overlay.Host,
		&c.Name:            overlay.Name,
		&c.User:            overlay.User,
		&c.Password:        overlay.Password,
		&c.SSLMode:         overlay.SSLMode,
		&c.ConnMaxLifetime: overlay.ConnMaxLifetime,
		&c.ConnTimeout:     overlay.ConnTimeout,
	} {
		if src != "" {
			*dst = src
		}
	}
	for dst, src := range map[*int]int{
		&c.Port:         overlay.Port,
		&c.MaxOpenConns: overlay.MaxOpenConns,
		&c.MaxIdleConns: overlay.MaxIdleConns,
	} {
		if src != 0 {
			*dst = src
		}
	}
	c.AutoMigrate = c.AutoMigrate || overlay.AutoMigrate
}

func (c *Config) loadDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 25
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 5
	}
	if c.ConnMaxLifetime == "" {
		c.ConnMaxLifetime = "15m"
	}
	if c.ConnTimeout == "" {
		c.ConnTimeout = "5s"
	}
}

func (c *Config) loadEnv(prefix string) {
	name := func(key string) string { return prefix + "_" + key }

	envvar.String(name("DSN"), &c.DSN)
	envvar.String(name("HOST"), &c.Host)
	envvar.Int(name("PORT"), &c.Port)
	envvar.String(name("NAME"), &c.Name)
	envvar.String(name("USER"), &c.User)
	envvar.String(name("PASSWORD"), &c.Password)
	envvar.String(name("SSL_MODE"), &c.SSLMode)
	envvar.PositiveInt(name("MAX_OPEN_CONNS"), &c.MaxOpenConns)
	envvar.PositiveInt(name("MAX_IDLE_CONNS"), &c.MaxIdleConns)
	envvar.Duration(name("CONN_MAX_LIFETIME"), &c.ConnMaxLifetime)
	envvar.Duration(name("CONN_TIMEOUT"), &c.ConnTimeout)
	envvar.Bool(name("AUTO_MIGRATE"), &c.AutoMigrate)
}

func (c *Config) validate() error {
	if c.DSN == "" {
		switch {
		case c.Name == "":
			return errors.New("database name required")
		case c.User == "":
			return errors.New("database user required")
		}
	}
	for key, v := range map[string]string{
		"conn_max_lifetime": c.ConnMaxLifetime,
		"conn_timeout":      c.ConnTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("database %s: %w", key, err)
		}
	}
	if _, err := pgx.ParseConfig(c.URL()); err != nil {
		return fmt.Errorf("database connection string: %w", err)
	}
	return nil
}
