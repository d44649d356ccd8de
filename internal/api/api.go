// Package api assembles the operator API module: every domain handler plus
// the scheduler, processor, and archive endpoints.
package api

import (
	"net/http"

	"github.com/JaimeStill/inquest/internal/config"
	"github.com/JaimeStill/inquest/pkg/middleware"
	"github.com/JaimeStill/inquest/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// Operations left nil are not mounted. Panics in handlers become 500s and
// every request is logged and counted by route pattern.
func NewModule(cfg *config.Config, runtime *Runtime, domain *Domain, ops Operations) *module.Module {
	mux := http.NewServeMux()
	registerRoutes(mux, runtime, domain, ops)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.Recover(runtime.Logger))
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.Observe(runtime.Telemetry.RecordRequest))

	return m
}
