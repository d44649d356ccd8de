// Package infrastructure builds the systems shared by the server and the
// command line: the lifecycle coordinator, the root logger, the database
// pool, the optional report archive, and the metrics registry.
package infrastructure

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/JaimeStill/inquest/internal/config"
	"github.com/JaimeStill/inquest/pkg/database"
	"github.com/JaimeStill/inquest/pkg/lifecycle"
	"github.com/JaimeStill/inquest/pkg/storage"
)

// Infrastructure is built unstarted. Storage is nil when the archive is
// disabled.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Metrics   *prometheus.Registry
}

// New logs to stderr.
func New(cfg *config.Config) (*Infrastructure, error) {
	return NewWithWriter(cfg, os.Stderr)
}

func NewWithWriter(cfg *config.Config, w io.Writer) (*Infrastructure, error) {
	infra := &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    NewLogger(&cfg.Logging, w),
		Metrics:   prometheus.NewRegistry(),
	}
	infra.Metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var err error
	if infra.Database, err = database.New(&cfg.Database, infra.Logger); err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	infra.Storage, err = storage.New(&cfg.Storage, infra.Logger)
	switch {
	case errors.Is(err, storage.ErrDisabled):
		infra.Storage = nil
		infra.Logger.Info("report archive disabled")
	case err != nil:
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	return infra, nil
}

// NewLogger returns a text or JSON slog logger at the configured level.
func NewLogger(cfg *config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Start hands the database and archive to the lifecycle. migrations runs
// at startup when the database has auto migration enabled.
func (i *Infrastructure) Start(migrations fs.FS) error {
	if err := i.Database.Start(i.Lifecycle, migrations); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	i.Lifecycle.Check("database", i.Database)

	if i.Storage == nil {
		return nil
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}
