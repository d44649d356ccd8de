// Package storage archives report documents in blob storage.
// Azure Blob Storage and a local directory backend are provided.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/JaimeStill/inquest/pkg/lifecycle"
)

// System archives report documents under slash-separated keys.
type System interface {
	Backend() string

	// Start prepares the backend during lifecycle startup.
	Start(lc *lifecycle.Coordinator) error

	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Download and Delete return ErrNotFound for missing keys. The caller
	// closes the reader.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// New creates the storage system named by cfg.Backend.
// Returns ErrDisabled when no backend is configured.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "storage", "backend", cfg.Backend)

	switch cfg.Backend {
	case "":
		return nil, ErrDisabled
	case BackendAzure:
		return newAzure(cfg, logger)
	case BackendLocal:
		return NewLocal(cfg.Directory, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// ReportKey places a report at <source>/<external_id>.pdf with both
// segments flattened so neither can name a directory.
func ReportKey(sourceCode, externalID string) string {
	return path.Join(flatten(sourceCode), flatten(externalID)+".pdf")
}

var separators = strings.NewReplacer("/", "_", "\\", "_", "..", "_")

func flatten(segment string) string {
	return separators.Replace(strings.TrimSpace(segment))
}

func validateKey(key string) error {
	switch {
	case key == "":
		return ErrEmptyKey
	case strings.Contains(key, ".."):
		return ErrInvalidKey
	}
	return nil
}
