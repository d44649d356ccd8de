package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/JaimeStill/inquest/internal/config"
	"github.com/JaimeStill/inquest/internal/infrastructure"
	"github.com/JaimeStill/inquest/internal/service"
	"github.com/JaimeStill/inquest/internal/store/migrations"
)

var errDatabaseUnavailable = errors.New("database unavailable")

// app is one CLI invocation's assembled service.
type app struct {
	cfg   *config.Config
	infra *infrastructure.Infrastructure
	svc   *service.Service
}

func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.LoadFile(opts.configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// open assembles the service and waits for the database. Logs go to
// stderr so stdout carries only results.
func open(opts *options) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	infra, err := infrastructure.NewWithWriter(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}

	svc, err := service.New(cfg, infra)
	if err != nil {
		return nil, err
	}

	if err := infra.Start(migrations.FS); err != nil {
		return nil, err
	}
	infra.Lifecycle.WaitForStartup()

	a := &app{cfg: cfg, infra: infra, svc: svc}
	if !infra.Database.Ready() {
		a.close()
		return nil, errDatabaseUnavailable
	}
	return a, nil
}

func (a *app) close() {
	if err := a.infra.Lifecycle.Shutdown(a.cfg.ShutdownTimeoutDuration()); err != nil {
		a.infra.Logger.Error("shutdown failed", "error", err)
	}
}
