package findings

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/inquest/pkg/handlers"
	"github.com/JaimeStill/inquest/pkg/pagination"
	"github.com/JaimeStill/inquest/pkg/routes"
)

// Handler exposes stored findings for review and manual exclusion.
type Handler struct {
	sys   System
	reply handlers.Responder
	pages pagination.Config
}

func NewHandler(sys System, logger *slog.Logger, pages pagination.Config) *Handler {
	return &Handler{
		sys:   sys,
		reply: handlers.NewResponder(logger.With("handler", "findings"), MapHTTPStatus),
		pages: pages,
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/findings",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.list},
			{Method: "GET", Pattern: "/{id}", Handler: h.reply.WithID(h.find)},
			{Method: "POST", Pattern: "/{id}/exclude", Handler: h.reply.WithID(h.exclude)},
		},
	}
}

// list filters by status, source_code, is_healthcare, the found_after and
// found_before window, and a title search.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.sys.List(r.Context(), pagination.PageRequestFromQuery(q, h.pages), FiltersFromQuery(q))
	h.reply.Reply(w, http.StatusOK, result, err)
}

func (h *Handler) find(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	f, err := h.sys.Find(r.Context(), id)
	h.reply.Reply(w, http.StatusOK, f, err)
}

// exclude removes a finding from analysis without deleting it.
func (h *Handler) exclude(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	f, err := h.sys.Exclude(r.Context(), id)
	h.reply.Reply(w, http.StatusOK, f, err)
}
