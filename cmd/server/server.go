package main

import (
	"net/http"
	"time"

	"github.com/JaimeStill/inquest/internal/api"
	"github.com/JaimeStill/inquest/internal/config"
	"github.com/JaimeStill/inquest/internal/infrastructure"
	"github.com/JaimeStill/inquest/internal/service"
	"github.com/JaimeStill/inquest/internal/store/migrations"
	"github.com/JaimeStill/inquest/internal/telemetry"
	"github.com/JaimeStill/inquest/pkg/handlers"
	"github.com/JaimeStill/inquest/pkg/module"
)

type server struct {
	infra *infrastructure.Infrastructure
	svc   *service.Service
	http  *listener
}

func newServer(cfg *config.Config) (*server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := service.New(cfg, infra)
	if err != nil {
		return nil, err
	}

	router := module.NewRouter()
	router.Mount(api.NewModule(cfg, svc.Runtime, svc.Domain, svc.Operations()))
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.HandleNative("GET /readyz", readiness(infra))
	router.Handle("GET "+cfg.API.MetricsPath, telemetry.Handler(infra.Metrics))

	infra.Logger.Info("server assembled",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"env", cfg.Env(),
		"analysis", svc.Processor != nil,
	)

	return &server{
		infra: infra,
		svc:   svc,
		http:  newListener(&cfg.Server, router, infra.Logger),
	}, nil
}

// readiness reports 503 until startup completes and every subsystem check
// passes.
func readiness(infra *infrastructure.Infrastructure) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		ready, checks := infra.Lifecycle.Readiness()
		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not ready", http.StatusServiceUnavailable
		}
		handlers.RespondJSON(w, code, map[string]any{"status": status, "checks": checks})
	}
}

// start brings up infrastructure and the listener, then seeds sources and
// starts the scheduler in the background once startup hooks finish.
func (s *server) start() error {
	lc := s.infra.Lifecycle
	log := s.infra.Logger

	if err := s.infra.Start(migrations.FS); err != nil {
		return err
	}
	if err := s.http.Start(lc); err != nil {
		return err
	}
	if err := s.svc.WatchTemplates(lc.Context()); err != nil {
		log.Warn("template watch unavailable", "error", err)
	}
	lc.Check("scheduler", s.svc.Scheduler)

	go func() {
		lc.WaitForStartup()
		if _, err := s.svc.Seed(lc.Context()); err != nil {
			log.Error("source seed failed", "error", err)
		}
		if err := s.svc.Scheduler.Start(lc); err != nil {
			log.Error("scheduler start failed", "error", err)
			return
		}
		log.Info("all subsystems ready")
	}()
	return nil
}

func (s *server) stop(timeout time.Duration) error {
	s.infra.Logger.Info("shutting down", "timeout", timeout)
	if err := s.infra.Lifecycle.Shutdown(timeout); err != nil {
		return err
	}
	s.infra.Logger.Info("inquest stopped")
	return nil
}
