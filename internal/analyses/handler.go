package analyses

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/inquest/pkg/handlers"
	"github.com/JaimeStill/inquest/pkg/pagination"
	"github.com/JaimeStill/inquest/pkg/routes"
)

type Handler struct {
	sys   System
	reply handlers.Responder
	pages pagination.Config
}

func NewHandler(sys System, logger *slog.Logger, pages pagination.Config) *Handler {
	return &Handler{
		sys:   sys,
		reply: handlers.NewResponder(logger.With("handler", "analyses"), MapHTTPStatus),
		pages: pages,
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/analyses",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.list},
			{Method: "GET", Pattern: "/{id}", Handler: h.reply.WithID(h.find)},
			{Method: "GET", Pattern: "/finding/{id}/latest", Handler: h.reply.WithID(h.latest)},
		},
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.sys.List(r.Context(), pagination.PageRequestFromQuery(q, h.pages), FiltersFromQuery(q))
	h.reply.Reply(w, http.StatusOK, result, err)
}

func (h *Handler) find(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	a, err := h.sys.Find(r.Context(), id)
	h.reply.Reply(w, http.StatusOK, a, err)
}

// latest serves the authoritative analysis for the finding named by id.
func (h *Handler) latest(w http.ResponseWriter, r *http.Request, finding uuid.UUID) {
	a, err := h.sys.Latest(r.Context(), finding)
	h.reply.Reply(w, http.StatusOK, a, err)
}
