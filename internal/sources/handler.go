package sources

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/inquest/pkg/handlers"
	"github.com/JaimeStill/inquest/pkg/pagination"
	"github.com/JaimeStill/inquest/pkg/routes"
)

// Handler serves the source registry. Sources are addressed by code.
type Handler struct {
	sys   System
	reply handlers.Responder
	pages pagination.Config
}

func NewHandler(sys System, logger *slog.Logger, pages pagination.Config) *Handler {
	return &Handler{
		sys:   sys,
		reply: handlers.NewResponder(logger.With("handler", "sources"), MapHTTPStatus),
		pages: pages,
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/sources",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.list},
			{Method: "GET", Pattern: "/{code}", Handler: h.find},
			{Method: "POST", Pattern: "/{code}/activate", Handler: h.setActive(true)},
			{Method: "POST", Pattern: "/{code}/deactivate", Handler: h.setActive(false)},
		},
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.sys.List(r.Context(), pagination.PageRequestFromQuery(q, h.pages), FiltersFromQuery(q))
	h.reply.Reply(w, http.StatusOK, result, err)
}

func (h *Handler) find(w http.ResponseWriter, r *http.Request) {
	src, err := h.sys.Find(r.Context(), r.PathValue("code"))
	h.reply.Reply(w, http.StatusOK, src, err)
}

// setActive toggles whether the scheduler scrapes a source.
func (h *Handler) setActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		src, err := h.sys.SetActive(r.Context(), r.PathValue("code"), active)
		h.reply.Reply(w, http.StatusOK, src, err)
	}
}
