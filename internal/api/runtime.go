package api

import (
	"github.com/JaimeStill/inquest/internal/config"
	"github.com/JaimeStill/inquest/internal/infrastructure"
	"github.com/JaimeStill/inquest/internal/telemetry"
	"github.com/JaimeStill/inquest/pkg/pagination"
)

// Runtime is the infrastructure view the API module runs against: a logger
// scoped to the module, the page bounds for listings, and the collectors
// request metrics go to.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Telemetry  *telemetry.Metrics
}

// NewRuntime scopes infra to the API module. metrics may be nil.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure, metrics *telemetry.Metrics) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		Pagination:     cfg.API.Pagination,
		Telemetry:      metrics,
	}
}
