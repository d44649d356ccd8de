package database_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/JaimeStill/inquest/pkg/database"
	"github.com/JaimeStill/inquest/pkg/lifecycle"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// unreachable points at a port nothing listens on. sql.Open is lazy, so
// New succeeds without a server.
func unreachable(t *testing.T, cfg database.Config) database.System {
	t.Helper()
	cfg.Port = 1
	cfg.ConnTimeout = "500ms"
	if err := cfg.Finalize(""); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	sys, err := database.New(&cfg, quiet)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return sys
}

func TestNewAppliesPool(t *testing.T) {
	sys := unreachable(t, database.Config{Name: "inquest", User: "inquest", MaxOpenConns: 42, MaxIdleConns: 7})
	defer sys.Connection().Close()

	if got := sys.Connection().Stats().MaxOpenConnections; got != 42 {
		t.Errorf("MaxOpenConnections = %d, want 42", got)
	}
	if sys.Ready() {
		t.Error("Ready() = true before Start")
	}
}

func TestPingUnreachable(t *testing.T) {
	sys := unreachable(t, database.Config{Name: "inquest", User: "inquest"})
	defer sys.Connection().Close()

	if err := sys.Ping(context.Background()); !errors.Is(err, database.ErrNotReady) {
		t.Errorf("Ping() error = %v, want ErrNotReady", err)
	}
}

func TestStartWithoutServerStaysUnready(t *testing.T) {
	sys := unreachable(t, database.Config{Name: "inquest", User: "inquest", AutoMigrate: true})
	lc := lifecycle.New()

	if err := sys.Start(lc, nil); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	lc.WaitForStartup()

	if sys.Ready() {
		t.Error("Ready() = true after a failed startup ping")
	}
	if err := lc.Shutdown(2 * time.Second); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := sys.Connection().Ping(); err == nil {
		t.Error("connection still usable after shutdown")
	}
}

func TestMigrateNilSource(t *testing.T) {
	cfg := database.Config{Name: "inquest", User: "inquest"}
	if err := database.Migrate(&cfg, nil, quiet); !errors.Is(err, database.ErrNoMigrations) {
		t.Errorf("Migrate() error = %v, want ErrNoMigrations", err)
	}
}
