package storage_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/spf13/afero"

	"github.com/JaimeStill/inquest/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func TestNewAzureReturnsSystem(t *testing.T) {
	cfg := &storage.Config{
		Backend:          storage.BackendAzure,
		ContainerName:    "reports",
		ConnectionString: azuriteConnString,
	}

	sys, err := storage.New(cfg, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if sys.Backend() != storage.BackendAzure {
		t.Errorf("Backend() = %q, want azure", sys.Backend())
	}
}

func TestNewInvalidConnectionString(t *testing.T) {
	cfg := &storage.Config{
		Backend:          storage.BackendAzure,
		ContainerName:    "reports",
		ConnectionString: "not-a-connection-string",
	}

	if _, err := storage.New(cfg, slog.Default()); err == nil {
		t.Fatal("expected error for invalid connection string, got nil")
	}
}

func TestNewDisabled(t *testing.T) {
	_, err := storage.New(&storage.Config{}, slog.Default())
	if !errors.Is(err, storage.ErrDisabled) {
		t.Errorf("New() error = %v, want ErrDisabled", err)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ErrNotFound maps to 404", storage.ErrNotFound, http.StatusNotFound},
		{"ErrEmptyKey maps to 400", storage.ErrEmptyKey, http.StatusBadRequest},
		{"ErrInvalidKey maps to 400", storage.ErrInvalidKey, http.StatusBadRequest},
		{"ErrDisabled maps to 503", storage.ErrDisabled, http.StatusServiceUnavailable},
		{"wrapped ErrNotFound maps to 404", fmt.Errorf("operation failed: %w", storage.ErrNotFound), http.StatusNotFound},
		{"unknown error maps to 500", fmt.Errorf("unexpected failure"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := storage.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReportKey(t *testing.T) {
	tests := []struct {
		source, external, want string
	}{
		{"uk_pfd", "2024-0123", "uk_pfd/2024-0123.pdf"},
		{"uk_pfd", "a/b", "uk_pfd/a_b.pdf"},
		{"nz", "../etc", "nz/__etc.pdf"},
	}

	for _, tt := range tests {
		if got := storage.ReportKey(tt.source, tt.external); got != tt.want {
			t.Errorf("ReportKey(%q, %q) = %q, want %q", tt.source, tt.external, got, tt.want)
		}
	}
}

func TestLocalRoundTrip(t *testing.T) {
	sys := storage.NewFs(afero.NewMemMapFs(), "mem", slog.Default())
	ctx := context.Background()
	key := storage.ReportKey("uk_pfd", "2024-0001")

	if ok, err := sys.Exists(ctx, key); err != nil || ok {
		t.Fatalf("Exists before upload = %v, %v; want false, nil", ok, err)
	}

	if err := sys.Upload(ctx, key, bytes.NewReader([]byte("%PDF-1.4 body")), "application/pdf"); err != nil {
		t.Fatalf("Upload error: %v", err)
	}

	if ok, err := sys.Exists(ctx, key); err != nil || !ok {
		t.Fatalf("Exists after upload = %v, %v; want true, nil", ok, err)
	}

	rc, err := sys.Download(ctx, key)
	if err != nil {
		t.Fatalf("Download error: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "%PDF-1.4 body" {
		t.Errorf("Download = %q, want original body", data)
	}

	if err := sys.Delete(ctx, key); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := sys.Download(ctx, key); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Download after delete error = %v, want ErrNotFound", err)
	}
	if err := sys.Delete(ctx, key); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}

func TestKeyValidation(t *testing.T) {
	azureSys, err := storage.New(&storage.Config{
		Backend:          storage.BackendAzure,
		ContainerName:    "reports",
		ConnectionString: azuriteConnString,
	}, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	systems := map[string]storage.System{
		"azure": azureSys,
		"local": storage.NewFs(afero.NewMemMapFs(), "mem", slog.Default()),
	}

	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"empty key", "", storage.ErrEmptyKey},
		{"path traversal", "reports/../secrets/key", storage.ErrInvalidKey},
		{"double dot in middle", "reports/..hidden/file.pdf", storage.ErrInvalidKey},
	}

	ctx := context.Background()

	for backend, sys := range systems {
		for _, tt := range tests {
			t.Run(backend+"/"+tt.name, func(t *testing.T) {
				if err := sys.Upload(ctx, tt.key, bytes.NewReader(nil), "application/pdf"); !errors.Is(err, tt.wantErr) {
					t.Errorf("Upload() error = %v, want %v", err, tt.wantErr)
				}
				if _, err := sys.Download(ctx, tt.key); !errors.Is(err, tt.wantErr) {
					t.Errorf("Download() error = %v, want %v", err, tt.wantErr)
				}
				if err := sys.Delete(ctx, tt.key); !errors.Is(err, tt.wantErr) {
					t.Errorf("Delete() error = %v, want %v", err, tt.wantErr)
				}
				if _, err := sys.Exists(ctx, tt.key); !errors.Is(err, tt.wantErr) {
					t.Errorf("Exists() error = %v, want %v", err, tt.wantErr)
				}
			})
		}
	}
}
