// Package database owns the PostgreSQL pool backing the record store and
// applies schema migrations.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync/atomic"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/inquest/pkg/lifecycle"
)

// ErrNotReady wraps ping failures.
var ErrNotReady = errors.New("database not ready")

type System interface {
	Connection() *sql.DB

	// Start pings the pool during startup and, with AutoMigrate set and a
	// non-nil migrations source, brings the schema up to date. The pool
	// closes on shutdown.
	Start(lc *lifecycle.Coordinator, migrations fs.FS) error

	// Ready is true between a successful startup and shutdown.
	Ready() bool
	Ping(ctx context.Context) error
}

type database struct {
	conn   *sql.DB
	cfg    *Config
	logger *slog.Logger
	ready  atomic.Bool
}

// New opens the pool without connecting.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	conn, err := sql.Open("pgx", cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{conn: conn, cfg: cfg, logger: logger.With("system", "database")}, nil
}

func (d *database) Connection() *sql.DB { return d.conn }

func (d *database) Ready() bool { return d.ready.Load() }

// Ping is bounded by the configured connection timeout.
func (d *database) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.ConnTimeoutDuration())
	defer cancel()

	if err := d.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrNotReady, err)
	}
	return nil
}

func (d *database) Start(lc *lifecycle.Coordinator, migrations fs.FS) error {
	log := d.logger.With("host", d.cfg.Host, "name", d.cfg.Name)

	lc.OnStartup(func() {
		if err := d.up(lc.Context(), migrations); err != nil {
			log.Error("database unavailable", "error", err)
			return
		}
		d.ready.Store(true)
		log.Info("database ready")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		d.ready.Store(false)
		if err := d.conn.Close(); err != nil {
			log.Error("database close failed", "error", err)
			return
		}
		log.Info("database closed")
	})

	return nil
}

func (d *database) up(ctx context.Context, migrations fs.FS) error {
	if err := d.Ping(ctx); err != nil {
		return err
	}
	if migrations == nil || !d.cfg.AutoMigrate {
		return nil
	}
	return Migrate(d.cfg, migrations, d.logger)
}
