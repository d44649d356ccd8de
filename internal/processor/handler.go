package processor

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/inquest/pkg/handlers"
	"github.com/JaimeStill/inquest/pkg/routes"
)

// Handler exposes the batch passes to operators.
type Handler struct {
	proc   *Processor
	logger *slog.Logger
}

func NewHandler(proc *Processor, logger *slog.Logger) *Handler {
	return &Handler{
		proc:   proc,
		logger: logger.With("handler", "processor"),
	}
}

// Routes returns the route group definition for processor endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/processor",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/classify", Handler: h.Classify},
			{Method: "POST", Pattern: "/analyse", Handler: h.Analyse},
			{Method: "POST", Pattern: "/run", Handler: h.Run},
		},
	}
}

func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.proc.Classify)
}

func (h *Handler) Analyse(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.proc.Analyse)
}

func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.proc.Run)
}

// serve runs a pass detached from the request so a dropped connection does
// not interrupt it; the pass timeout still applies.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, pass func(context.Context, int) (*Stats, error)) {
	limit, err := parseLimit(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	stats, err := pass(context.WithoutCancel(r.Context()), limit)
	if err != nil {
		if stats != nil {
			h.logger.Error("pass failed", "pass", stats.Pass, "error", err)
			handlers.RespondJSON(w, MapHTTPStatus(err), stats)
			return
		}
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, stats)
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLimit, raw)
	}
	return n, nil
}
