// Package service assembles the systems shared by the HTTP server and the
// command line: the domain repositories, the record store, the scrape
// scheduler, and the analysis processor.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/inquest/internal/adapters"
	"github.com/JaimeStill/inquest/internal/api"
	"github.com/JaimeStill/inquest/internal/config"
	"github.com/JaimeStill/inquest/internal/fetch"
	"github.com/JaimeStill/inquest/internal/infrastructure"
	"github.com/JaimeStill/inquest/internal/llm"
	"github.com/JaimeStill/inquest/internal/processor"
	"github.com/JaimeStill/inquest/internal/prompts"
	"github.com/JaimeStill/inquest/internal/scheduler"
	"github.com/JaimeStill/inquest/internal/sources"
	"github.com/JaimeStill/inquest/internal/store"
	"github.com/JaimeStill/inquest/internal/telemetry"
	"github.com/JaimeStill/inquest/internal/workflow"
	"github.com/JaimeStill/inquest/pkg/storage"
)

// ProcessTask names the scheduled classify-and-analyse task.
const ProcessTask = "process"

// Service holds every assembled system. Processor is nil when no language
// model provider has credentials.
type Service struct {
	Runtime   *api.Runtime
	Domain    *api.Domain
	Store     store.Store
	Metrics   *telemetry.Metrics
	Scheduler *scheduler.Scheduler
	Processor *processor.Processor
	Templates *prompts.Resolver

	cfg    *config.Config
	logger *slog.Logger
}

// New wires the systems on top of infra. Nothing is started.
func New(cfg *config.Config, infra *infrastructure.Infrastructure) (*Service, error) {
	metrics := telemetry.New(infra.Metrics)
	runtime := api.NewRuntime(cfg, infra, metrics)
	domain := api.NewDomain(runtime)
	logger := infra.Logger

	records := store.New(infra.Database.Connection(), logger)

	sched := NewScheduler(cfg, records, infra.Storage, metrics, logger)

	templates := prompts.NewResolver(cfg.Prompts.TemplatesDir, logger)

	svc := &Service{
		Runtime:   runtime,
		Domain:    domain,
		Store:     records,
		Metrics:   metrics,
		Scheduler: sched,
		Templates: templates,
		cfg:       cfg,
		logger:    logger,
	}

	gateway, err := NewGateway(&cfg.LLM, llm.Options{Metrics: metrics, Logger: logger}, logger)
	switch {
	case errors.Is(err, llm.ErrNoProvider):
		logger.Warn("analysis disabled", "reason", err)
		return svc, nil
	case err != nil:
		return nil, fmt.Errorf("llm init failed: %w", err)
	}

	svc.Processor = processor.New(processor.FromSettings(&cfg.Processor), processor.Deps{
		Store: records,
		Runtime: &workflow.Runtime{
			LLM:       gateway,
			Prompts:   domain.Prompts,
			Templates: templates,
			Settings:  workflow.SettingsFromConfig(&cfg.LLM, &cfg.Prompts),
			Logger:    logger.With("workflow", "analysis"),
		},
		Metrics: metrics,
		Logger:  logger,
	})

	if cfg.Processor.Schedule != "" {
		if err := sched.AddTask(ProcessTask, cfg.Processor.Schedule, svc.Processor.Task()); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", ProcessTask, err)
		}
	}

	return svc, nil
}

// NewGateway creates a Gateway for the configured provider, or for the
// other provider when the configured one has no credentials.
func NewGateway(cfg *config.LLMConfig, opts llm.Options, logger *slog.Logger) (*llm.Gateway, error) {
	gateway, err := llm.NewDefault(cfg, opts)
	if !errors.Is(err, llm.ErrNoProvider) {
		return gateway, err
	}

	gateway, fbErr := llm.NewFallback(cfg, cfg.Provider, opts)
	if fbErr != nil {
		return nil, errors.Join(err, fbErr)
	}
	logger.Warn("primary provider has no credentials, using fallback",
		"primary", cfg.Provider,
		"provider", gateway.Provider(),
		"model", gateway.Model(),
	)
	return gateway, nil
}

// NewScheduler builds a scrape scheduler over records with the default
// adapter registry. archive may be nil.
func NewScheduler(cfg *config.Config, records store.Store, archive storage.System, metrics *telemetry.Metrics, logger *slog.Logger) *scheduler.Scheduler {
	base := fetch.FromSettings(&cfg.Fetch)
	if !cfg.Fetch.IgnoreRobots {
		base.Robots = fetch.NewRobots(nil, cfg.Fetch.UserAgent)
	}

	return scheduler.New(scheduler.FromSettings(&cfg.Scheduler), scheduler.Deps{
		Store:    records,
		Registry: adapters.Default(),
		Fetchers: scheduler.NewFetcherFactory(base, logger),
		Archive:  archive,
		Metrics:  metrics,
		Logger:   logger,
	})
}

// Seed loads the configured sources file into the source table. A missing
// file is logged and skipped.
func (s *Service) Seed(ctx context.Context) (int, error) {
	path := s.cfg.SourcesFile
	if path == "" {
		return 0, nil
	}

	seeds, err := sources.LoadSeed(path)
	if err != nil {
		return 0, err
	}
	if len(seeds) == 0 {
		s.logger.Info("no sources to seed", "path", path)
		return 0, nil
	}

	n, err := s.Domain.Sources.Seed(ctx, seeds)
	if err != nil {
		return 0, err
	}
	s.logger.Info("sources seeded", "path", path, "sources", n)
	return n, nil
}

// Operations exposes the scheduler and processor to the API module.
func (s *Service) Operations() api.Operations {
	return api.Operations{Scheduler: s.Scheduler, Processor: s.Processor}
}

// WatchTemplates reloads prompt templates on change until ctx ends, when
// enabled in configuration.
func (s *Service) WatchTemplates(ctx context.Context) error {
	if !s.cfg.Prompts.Watch {
		return nil
	}
	return s.Templates.Watch(ctx)
}
