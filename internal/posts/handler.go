package posts

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/inquest/pkg/handlers"
	"github.com/JaimeStill/inquest/pkg/pagination"
	"github.com/JaimeStill/inquest/pkg/routes"
)

// Handler serves the editorial review queue for drafted posts.
type Handler struct {
	sys   System
	reply handlers.Responder
	pages pagination.Config
}

func NewHandler(sys System, logger *slog.Logger, pages pagination.Config) *Handler {
	return &Handler{
		sys:   sys,
		reply: handlers.NewResponder(logger.With("handler", "posts"), MapHTTPStatus),
		pages: pages,
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/posts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.list},
			{Method: "GET", Pattern: "/{id}", Handler: h.reply.WithID(h.find)},
			{Method: "GET", Pattern: "/slug/{slug}", Handler: h.findBySlug},
			{Method: "POST", Pattern: "/{id}/approve", Handler: h.reply.WithID(review(h, h.sys.Approve))},
			{Method: "POST", Pattern: "/{id}/reject", Handler: h.reply.WithID(review(h, h.sys.Reject))},
			{Method: "POST", Pattern: "/{id}/publish", Handler: h.reply.WithID(review(h, h.sys.Publish))},
		},
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.sys.List(r.Context(), pagination.PageRequestFromQuery(q, h.pages), FiltersFromQuery(q))
	h.reply.Reply(w, http.StatusOK, result, err)
}

func (h *Handler) find(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	p, err := h.sys.Find(r.Context(), id)
	h.reply.Reply(w, http.StatusOK, p, err)
}

func (h *Handler) findBySlug(w http.ResponseWriter, r *http.Request) {
	p, err := h.sys.FindBySlug(r.Context(), r.PathValue("slug"))
	h.reply.Reply(w, http.StatusOK, p, err)
}

// review decodes a review command and applies it as a status transition.
func review[C any](h *Handler, apply func(context.Context, uuid.UUID, C) (*Post, error)) func(http.ResponseWriter, *http.Request, uuid.UUID) {
	return func(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
		cmd, err := handlers.Decode[C](r)
		if err != nil {
			h.reply.Error(w, http.StatusBadRequest, err)
			return
		}
		p, err := apply(r.Context(), id, cmd)
		h.reply.Reply(w, http.StatusOK, p, err)
	}
}
