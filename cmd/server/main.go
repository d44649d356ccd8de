// Command server runs the inquest HTTP API with the scrape scheduler and
// analysis processor in the background.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JaimeStill/inquest/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "inquest server:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	srv, err := newServer(cfg)
	if err != nil {
		return err
	}
	if err := srv.start(); err != nil {
		return err
	}

	<-ctx.Done()
	return srv.stop(cfg.ShutdownTimeoutDuration())
}
