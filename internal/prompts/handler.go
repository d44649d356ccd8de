package prompts

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/inquest/pkg/handlers"
	"github.com/JaimeStill/inquest/pkg/pagination"
	"github.com/JaimeStill/inquest/pkg/routes"
)

// Handler serves the operator endpoints for stage instruction overrides.
type Handler struct {
	sys   System
	reply handlers.Responder
	pages pagination.Config
}

func NewHandler(sys System, logger *slog.Logger, pages pagination.Config) *Handler {
	return &Handler{
		sys:   sys,
		reply: handlers.NewResponder(logger.With("handler", "prompts"), MapHTTPStatus),
		pages: pages,
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/prompts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.list},
			{Method: "POST", Pattern: "", Handler: h.create},
			{Method: "GET", Pattern: "/{id}", Handler: h.reply.WithID(h.find)},
			{Method: "PUT", Pattern: "/{id}", Handler: h.reply.WithID(h.update)},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.reply.WithID(h.delete)},
			{Method: "POST", Pattern: "/{id}/activate", Handler: h.reply.WithID(h.toggle(true))},
			{Method: "POST", Pattern: "/{id}/deactivate", Handler: h.reply.WithID(h.toggle(false))},
		},
		Children: []routes.Group{{
			Prefix: "/stages",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "", Handler: h.stages},
				{Method: "GET", Pattern: "/{stage}", Handler: h.effective},
			},
		}},
	}
}

// list pages through overrides, filtered by stage, name, and active.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.sys.List(r.Context(), pagination.PageRequestFromQuery(q, h.pages), FiltersFromQuery(q))
	h.reply.Reply(w, http.StatusOK, result, err)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.Decode[CreateCommand](r)
	if err != nil {
		h.reply.Error(w, http.StatusBadRequest, err)
		return
	}
	p, err := h.sys.Create(r.Context(), cmd)
	h.reply.Reply(w, http.StatusCreated, p, err)
}

func (h *Handler) stages(w http.ResponseWriter, _ *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, Stages())
}

// effective reports the instructions and output spec the pipeline will
// use for a stage, and the override supplying them if any.
func (h *Handler) effective(w http.ResponseWriter, r *http.Request) {
	stage, err := ParseStage(r.PathValue("stage"))
	if err != nil {
		h.reply.Error(w, http.StatusBadRequest, err)
		return
	}
	e, err := h.sys.Effective(r.Context(), stage)
	h.reply.Reply(w, http.StatusOK, e, err)
}

func (h *Handler) find(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	p, err := h.sys.Find(r.Context(), id)
	h.reply.Reply(w, http.StatusOK, p, err)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	cmd, err := handlers.Decode[UpdateCommand](r)
	if err != nil {
		h.reply.Error(w, http.StatusBadRequest, err)
		return
	}
	p, err := h.sys.Update(r.Context(), id, cmd)
	h.reply.Reply(w, http.StatusOK, p, err)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	h.reply.Empty(w, h.sys.Delete(r.Context(), id))
}

// toggle activates or deactivates an override. Activation replaces any
// other active override for the same stage.
func (h *Handler) toggle(active bool) func(http.ResponseWriter, *http.Request, uuid.UUID) {
	return func(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
		set := h.sys.Deactivate
		if active {
			set = h.sys.Activate
		}
		p, err := set(r.Context(), id)
		h.reply.Reply(w, http.StatusOK, p, err)
	}
}
