package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/JaimeStill/inquest/internal/config"
	"github.com/JaimeStill/inquest/internal/infrastructure"
	"github.com/JaimeStill/inquest/internal/llm"
	"github.com/JaimeStill/inquest/internal/scheduler"
	"github.com/JaimeStill/inquest/internal/service"
	"github.com/JaimeStill/inquest/internal/sources"
	"github.com/JaimeStill/inquest/internal/store"
	"github.com/JaimeStill/inquest/internal/telemetry"
)

const configTemplate = `
sources_file = %q

[database]
host = "localhost"
port = 5432
name = "inquest"
user = "inquest"
password = "inquest"

[storage]
backend = "local"
directory = %q

[processor]
schedule = "@every 6h"
`

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("INQUEST_ANTHROPIC_API_KEY", "")
	t.Setenv("INQUEST_OPENAI_API_KEY", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf(configTemplate, filepath.Join(dir, "missing.yaml"), filepath.Join(dir, "archive"))
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	return cfg
}

func build(t *testing.T, cfg *config.Config) *service.Service {
	t.Helper()
	infra, err := infrastructure.NewWithWriter(cfg, io.Discard)
	if err != nil {
		t.Fatalf("infrastructure: %v", err)
	}
	t.Cleanup(func() { infra.Database.Connection().Close() })

	svc, err := service.New(cfg, infra)
	if err != nil {
		t.Fatalf("service.New: %v", err)
	}
	return svc
}

func TestNewWithoutProvider(t *testing.T) {
	svc := build(t, loadConfig(t))

	if svc.Processor != nil {
		t.Error("Processor built without provider credentials")
	}
	if svc.Scheduler == nil || svc.Store == nil || svc.Domain == nil {
		t.Fatalf("service = %+v, want scheduler, store, and domain", svc)
	}
	if jobs := svc.Scheduler.Jobs(); len(jobs) != 0 {
		t.Errorf("jobs = %+v, want none", jobs)
	}
	if ops := svc.Operations(); ops.Processor != nil || ops.Scheduler == nil {
		t.Errorf("Operations = %+v", ops)
	}
}

func TestNewSchedulesProcessing(t *testing.T) {
	cfg := loadConfig(t)
	cfg.LLM.Anthropic.APIKey = "sk-ant-test"

	svc := build(t, cfg)

	if svc.Processor == nil {
		t.Fatal("Processor = nil, want configured")
	}
	jobs := svc.Scheduler.Jobs()
	if len(jobs) != 1 || jobs[0].Code != service.ProcessTask || jobs[0].Kind != scheduler.KindTask {
		t.Errorf("jobs = %+v, want the process task", jobs)
	}
	if jobs[0].Schedule != "@every 6h" {
		t.Errorf("schedule = %q, want @every 6h", jobs[0].Schedule)
	}
}

func TestNewFallsBackToOtherProvider(t *testing.T) {
	cfg := loadConfig(t)
	cfg.LLM.OpenAI.APIKey = "sk-test"

	svc := build(t, cfg)

	if svc.Processor == nil {
		t.Fatal("Processor = nil, want the fallback provider")
	}
}

func TestNewGateway(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	tests := []struct {
		name      string
		anthropic string
		openai    string
		want      string
	}{
		{"primary", "sk-ant", "sk", "claude"},
		{"fallback", "", "sk", "openai"},
		{"none", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.LLMConfig{Provider: "claude"}
			cfg.Anthropic.APIKey = tt.anthropic
			cfg.OpenAI.APIKey = tt.openai

			g, err := service.NewGateway(&cfg, llm.Options{}, logger)
			if tt.want == "" {
				if !errors.Is(err, llm.ErrNoProvider) {
					t.Errorf("NewGateway err = %v, want ErrNoProvider", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewGateway error: %v", err)
			}
			if g.Provider() != tt.want {
				t.Errorf("Provider = %s, want %s", g.Provider(), tt.want)
			}
		})
	}
}

func TestSeedWithoutFile(t *testing.T) {
	svc := build(t, loadConfig(t))

	n, err := svc.Seed(context.Background())
	if err != nil || n != 0 {
		t.Errorf("Seed = %d, %v, want 0, nil", n, err)
	}
}

func TestWatchTemplatesDisabled(t *testing.T) {
	svc := build(t, loadConfig(t))

	if err := svc.WatchTemplates(context.Background()); err != nil {
		t.Errorf("WatchTemplates = %v, want nil when disabled", err)
	}
}

func TestNewSchedulerOverMemory(t *testing.T) {
	cfg := loadConfig(t)
	mem := store.NewMemory(
		sources.Source{ID: uuid.New(), Code: "daily", BaseURL: "https://example.test/", Schedule: "@daily", Active: true},
		sources.Source{ID: uuid.New(), Code: "manual", BaseURL: "https://example.test/", Active: true},
		sources.Source{ID: uuid.New(), Code: "off", BaseURL: "https://example.test/", Schedule: "@daily"},
	)
	metrics := telemetry.New(prometheus.NewRegistry())
	logger := slog.New(slog.DiscardHandler)

	sched := service.NewScheduler(cfg, mem, nil, metrics, logger)
	jobs, err := sched.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Code != "daily" {
		t.Errorf("jobs = %+v, want daily only", jobs)
	}
}
