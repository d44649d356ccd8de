package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/inquest/pkg/handlers"
	"github.com/JaimeStill/inquest/pkg/routes"
)

// Handler exposes the scheduler to operators.
type Handler struct {
	sched  *Scheduler
	logger *slog.Logger
}

func NewHandler(sched *Scheduler, logger *slog.Logger) *Handler {
	return &Handler{
		sched:  sched,
		logger: logger.With("handler", "scheduler"),
	}
}

// Routes returns the route group definition for scheduler endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/scheduler",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/jobs", Handler: h.Jobs},
			{Method: "POST", Pattern: "/sync", Handler: h.Sync},
			{Method: "POST", Pattern: "/run/{code}", Handler: h.Run},
		},
	}
}

func (h *Handler) Jobs(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sched.Jobs())
}

func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.sched.Sync(r.Context())
	if err != nil && jobs == nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	if err != nil {
		h.logger.Warn("sync completed with rejected schedules", "error", err)
	}
	handlers.RespondJSON(w, http.StatusOK, jobs)
}

// Run scrapes a source now. The run is detached from the request so a
// dropped connection does not cut it short; the run timeout still applies.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	summary, err := h.sched.RunNow(context.WithoutCancel(r.Context()), r.PathValue("code"))
	if err != nil {
		if summary != nil && errors.Is(err, ErrRunFailed) {
			h.logger.Error("run failed", "source", summary.SourceCode, "error", err)
			handlers.RespondJSON(w, http.StatusBadGateway, summary)
			return
		}
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, summary)
}
