// Package scheduler runs source scrapes on their cron schedules or on
// demand. At most one run per source is in flight; an overlapping trigger
// is skipped, never queued.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/JaimeStill/inquest/internal/adapters"
	"github.com/JaimeStill/inquest/internal/config"
	"github.com/JaimeStill/inquest/internal/store"
	"github.com/JaimeStill/inquest/internal/telemetry"
	"github.com/JaimeStill/inquest/pkg/lifecycle"
	"github.com/JaimeStill/inquest/pkg/storage"
)

const (
	KindSource = "source"
	KindTask   = "task"
)

// Parser accepts standard five-field expressions and descriptors such as
// @daily or @every 6h.
var Parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Config bounds runs and fixes the cron time zone.
type Config struct {
	RunTimeout time.Duration
	Location   *time.Location
}

// FromSettings maps the [scheduler] section onto a Config.
func FromSettings(c *config.SchedulerConfig) Config {
	return Config{
		RunTimeout: c.RunTimeoutDuration(),
		Location:   c.Location(),
	}
}

// Deps are the collaborators a Scheduler drives. Archive and Metrics are
// optional.
type Deps struct {
	Store    store.Store
	Registry *adapters.Registry
	Fetchers FetcherFactory
	Archive  storage.System
	Metrics  *telemetry.Metrics
	Logger   *slog.Logger
}

// Job describes one scheduled entry.
type Job struct {
	Code     string     `json:"code"`
	Kind     string     `json:"kind"`
	Schedule string     `json:"schedule"`
	NextRun  *time.Time `json:"next_run"`
	Running  bool       `json:"running"`
}

type entry struct {
	id       cron.EntryID
	code     string
	kind     string
	schedule string
}

type task func(ctx context.Context) error

// Scheduler owns the cron runner and the single-flight guard.
type Scheduler struct {
	cfg      Config
	store    store.Store
	registry *adapters.Registry
	fetchers FetcherFactory
	archive  storage.System
	metrics  *telemetry.Metrics
	logger   *slog.Logger
	cron     *cron.Cron
	now      func() time.Time

	mu      sync.Mutex
	ctx     context.Context
	started bool
	running map[string]bool
	entries map[string]entry
	tasks   map[string]task
}

// New creates a Scheduler. Cron entries fire only after Start.
func New(cfg Config, deps Deps) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	logger := deps.Logger.With("system", "scheduler")

	return &Scheduler{
		cfg:      cfg,
		store:    deps.Store,
		registry: deps.Registry,
		fetchers: deps.Fetchers,
		archive:  deps.Archive,
		metrics:  deps.Metrics,
		logger:   logger,
		cron: cron.New(
			cron.WithLocation(cfg.Location),
			cron.WithParser(Parser),
			cron.WithChain(cron.Recover(cronLogger{logger})),
		),
		now:     time.Now,
		ctx:     context.Background(),
		running: make(map[string]bool),
		entries: make(map[string]entry),
		tasks:   make(map[string]task),
	}
}

// Start registers the scheduler with the lifecycle: sources are synced
// and the cron runner started at startup, and the runner is drained at
// shutdown.
func (s *Scheduler) Start(lc *lifecycle.Coordinator) error {
	s.mu.Lock()
	s.ctx = lc.Context()
	s.mu.Unlock()

	lc.OnStartup(func() {
		if _, err := s.Sync(lc.Context()); err != nil {
			s.logger.Error("initial sync failed", "error", err)
		}
		s.cron.Start()

		s.mu.Lock()
		s.started = true
		s.mu.Unlock()
		s.logger.Info("scheduler started", "entries", len(s.cron.Entries()))
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		s.Stop()
	})

	return nil
}

// Ready reports whether the cron runner is started.
func (s *Scheduler) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Stop halts the cron runner and waits for in-flight cron runs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.mu.Lock()
	s.started = false
	s.mu.Unlock()
	s.logger.Info("scheduler stopped")
}

// Sync reloads active sources and reschedules them. Sources without a
// schedule run only on demand. Invalid schedules are skipped and
// reported in the returned error.
func (s *Scheduler) Sync(ctx context.Context) ([]Job, error) {
	srcs, err := s.store.ActiveSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active sources: %w", err)
	}

	s.mu.Lock()
	for key, e := range s.entries {
		if e.kind == KindSource {
			s.cron.Remove(e.id)
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()

	var errs []error
	for _, src := range srcs {
		if src.Schedule == "" {
			continue
		}
		if err := s.schedule(src.Code, KindSource, src.Schedule, s.sourceJob(src.Code)); err != nil {
			errs = append(errs, err)
			s.logger.Error("schedule rejected", "source", src.Code, "schedule", src.Schedule, "error", err)
		}
	}

	s.logger.Info("sources synced", "active", len(srcs))
	return s.Jobs(), errors.Join(errs...)
}

// AddTask schedules a named background task under the same single-flight
// guard as source runs.
func (s *Scheduler) AddTask(name, spec string, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	s.tasks[name] = fn
	s.mu.Unlock()

	return s.schedule(name, KindTask, spec, func() {
		if err := s.RunTask(s.baseContext(), name); err != nil && !errors.Is(err, ErrAlreadyRunning) {
			s.logger.Error("task failed", "task", name, "error", err)
		}
	})
}

// RunTask runs a registered task now.
func (s *Scheduler) RunTask(ctx context.Context, name string) error {
	s.mu.Lock()
	fn, ok := s.tasks[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTask, name)
	}

	key := runKey(KindTask, name)
	if !s.acquire(key) {
		s.logger.Info("task skipped, already running", "task", name)
		return ErrAlreadyRunning
	}
	defer s.release(key)

	return fn(ctx)
}

// Jobs reports every scheduled entry, sources first. Before Start the
// next run is projected from the schedule.
func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]Job, 0, len(s.entries))
	for key, e := range s.entries {
		j := Job{
			Code:     e.code,
			Kind:     e.kind,
			Schedule: e.schedule,
			Running:  s.running[key],
		}
		next := s.cron.Entry(e.id).Next
		if next.IsZero() {
			// The runner computes Next only once started.
			if spec, err := Parser.Parse(e.schedule); err == nil {
				next = spec.Next(s.now().In(s.cfg.Location))
			}
		}
		if !next.IsZero() {
			j.NextRun = &next
		}
		jobs = append(jobs, j)
	}

	slices.SortFunc(jobs, func(a, b Job) int {
		if a.Kind != b.Kind {
			if a.Kind == KindSource {
				return -1
			}
			return 1
		}
		if a.Code < b.Code {
			return -1
		}
		if a.Code > b.Code {
			return 1
		}
		return 0
	})
	return jobs
}

// RunNow scrapes the source immediately. It returns ErrAlreadyRunning
// when a run of the same source is in flight. A run whose first listing
// page fails returns its summary along with an ErrRunFailed error.
func (s *Scheduler) RunNow(ctx context.Context, code string) (*RunSummary, error) {
	key := runKey(KindSource, code)
	if !s.acquire(key) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRunning, code)
	}
	defer s.release(key)

	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}

	return s.run(ctx, code)
}

func (s *Scheduler) run(ctx context.Context, code string) (*RunSummary, error) {
	src, err := s.store.ActiveSource(ctx, code)
	if err != nil {
		return nil, err
	}

	adapter, err := s.registry.New(*src)
	if err != nil {
		return nil, err
	}

	fetcher, err := s.fetchers(*src, adapter.Settings())
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			s.logger.Warn("fetcher close failed", "source", code, "error", err)
		}
	}()

	summary := newSummary(code, s.now())
	s.logger.Info("scrape started", "source", code, "adapter", adapter.Name(), "max_pages", adapter.Settings().MaxPages)

	candidates, scrapeErr := s.scrape(ctx, *src, adapter, fetcher, summary)

	if scrapeErr == nil {
		// collected candidates are kept even when the run was cancelled
		if err := s.persist(context.WithoutCancel(ctx), *src, candidates, summary); err != nil {
			summary.errorf("persist run: %v", err)
			scrapeErr = fmt.Errorf("%w: %s: persist: %w", ErrRunFailed, code, err)
		}
	}

	summary.finish(s.now())
	s.metrics.RecordScrape(code, summary.Outcome(), summary.PagesScraped, summary.FailedPages,
		summary.NewFindings, summary.DuplicateFindings, time.Duration(summary.DurationSeconds*float64(time.Second)))

	s.logger.Info("scrape completed",
		"source", code,
		"pages_scraped", summary.PagesScraped,
		"failed_pages", summary.FailedPages,
		"new_findings", summary.NewFindings,
		"duplicate_findings", summary.DuplicateFindings,
		"errors", len(summary.Errors),
		"duration_seconds", summary.DurationSeconds,
	)

	return summary, scrapeErr
}

func (s *Scheduler) sourceJob(code string) func() {
	return func() {
		_, err := s.RunNow(s.baseContext(), code)
		switch {
		case errors.Is(err, ErrAlreadyRunning):
			s.logger.Info("scheduled run skipped, already running", "source", code)
		case err != nil:
			s.logger.Error("scheduled run failed", "source", code, "error", err)
		}
	}
}

func (s *Scheduler) schedule(code, kind, spec string, fn func()) error {
	if _, err := Parser.Parse(spec); err != nil {
		return fmt.Errorf("%w: %s: %q: %w", ErrInvalidSchedule, code, spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := runKey(kind, code)
	if prev, ok := s.entries[key]; ok {
		s.cron.Remove(prev.id)
	}
	id, err := s.cron.AddFunc(spec, fn)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidSchedule, code, err)
	}
	s.entries[key] = entry{id: id, code: code, kind: kind, schedule: spec}
	return nil
}

func runKey(kind, code string) string {
	return kind + ":" + code
}

func (s *Scheduler) baseContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

func (s *Scheduler) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[key] {
		return false
	}
	s.running[key] = true
	return true
}

func (s *Scheduler) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, key)
}

type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
