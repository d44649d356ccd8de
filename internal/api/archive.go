package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"

	"github.com/JaimeStill/inquest/pkg/handlers"
	"github.com/JaimeStill/inquest/pkg/routes"
	"github.com/JaimeStill/inquest/pkg/storage"
)

// archiveHandler serves report PDFs archived during scrape runs. store is
// nil when no archive backend is configured.
type archiveHandler struct {
	store  storage.System
	logger *slog.Logger
}

func newArchiveHandler(store storage.System, logger *slog.Logger) *archiveHandler {
	return &archiveHandler{
		store:  store,
		logger: logger.With("handler", "archive"),
	}
}

func (h *archiveHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/archive",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{key...}", Handler: h.download},
		},
	}
}

func (h *archiveHandler) download(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		handlers.RespondError(w, h.logger, http.StatusServiceUnavailable, storage.ErrDisabled)
		return
	}

	key := r.PathValue("key")
	body, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(key)))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("archive download interrupted", "key", key, "error", err)
	}
}
