package api

import (
	"net/http"

	"github.com/JaimeStill/inquest/internal/processor"
	"github.com/JaimeStill/inquest/internal/scheduler"
	"github.com/JaimeStill/inquest/pkg/routes"
)

// registerRoutes mounts the domain handlers. Operation routes are added
// only for the subsystems that were assembled.
func registerRoutes(
	mux *http.ServeMux,
	runtime *Runtime,
	domain *Domain,
	ops Operations,
) {
	groups := []routes.Group{
		domain.Sources.Handler().Routes(),
		domain.Findings.Handler().Routes(),
		domain.Analyses.Handler().Routes(),
		domain.Posts.Handler().Routes(),
		domain.Prompts.Handler().Routes(),
		newArchiveHandler(runtime.Storage, runtime.Logger).routes(),
	}
	if ops.Scheduler != nil {
		groups = append(groups, scheduler.NewHandler(ops.Scheduler, runtime.Logger).Routes())
	}
	if ops.Processor != nil {
		groups = append(groups, processor.NewHandler(ops.Processor, runtime.Logger).Routes())
	}

	routes.Register(mux, groups...)
	runtime.Logger.Debug("api routes registered", "routes", len(routes.Patterns(groups...)))
}
