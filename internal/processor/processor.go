// Package processor drives findings through the analysis pipeline in
// batches. A pass selects pending findings inside one store transaction,
// runs the pipeline on each, persists every record under its own guard so
// one failure never spoils the rest, and commits once at the end.
package processor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/inquest/internal/config"
	"github.com/JaimeStill/inquest/internal/findings"
	"github.com/JaimeStill/inquest/internal/store"
	"github.com/JaimeStill/inquest/internal/telemetry"
	"github.com/JaimeStill/inquest/internal/workflow"
)

// Config bounds each pass.
type Config struct {
	BatchSize int
	Threshold float64
	Workers   int
	Timeout   time.Duration
}

func DefaultConfig() Config {
	return Config{BatchSize: 10, Threshold: 0.7, Workers: 1}
}

func FromSettings(c *config.ProcessorConfig) Config {
	return Config{
		BatchSize: c.BatchSize,
		Threshold: c.Threshold,
		Workers:   c.Workers,
		Timeout:   c.TimeoutDuration(),
	}
}

// Deps holds the processor's collaborators. Metrics may be nil.
type Deps struct {
	Store   store.Store
	Runtime *workflow.Runtime
	Metrics *telemetry.Metrics
	Logger  *slog.Logger
}

type Processor struct {
	cfg     Config
	store   store.Store
	rt      *workflow.Runtime
	metrics *telemetry.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func New(cfg Config, deps Deps) *Processor {
	def := DefaultConfig()
	if cfg.BatchSize < 1 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.Workers < 1 {
		cfg.Workers = def.Workers
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Processor{
		cfg:     cfg,
		store:   deps.Store,
		rt:      deps.Runtime,
		metrics: deps.Metrics,
		logger:  logger.With("system", "processor"),
		now:     time.Now,
	}
}

// Threshold is the confidence at which a finding counts as healthcare.
func (p *Processor) Threshold() float64 { return p.cfg.Threshold }

// persistFn writes one record's results and counts them into d. It runs
// inside the record's guard, serialized with every other record.
type persistFn func(ctx context.Context, tx store.Tx, d *Stats) error

// work is the computed, not yet persisted, outcome of one record.
type work struct {
	tokensIn  int
	tokensOut int
	cost      float64
	persist   persistFn
}

type (
	selectFn  func(ctx context.Context, tx store.Tx, limit int) ([]findings.Finding, error)
	processFn func(ctx context.Context, f findings.Finding) (*work, error)
)

// pass runs one batch. Pipeline calls run on up to Workers goroutines;
// store writes are serialized. A non-positive limit means BatchSize.
func (p *Processor) pass(ctx context.Context, name string, limit int, pending selectFn, process processFn) (*Stats, error) {
	if limit <= 0 {
		limit = p.cfg.BatchSize
	}
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	logger := p.logger.With("pass", name)
	stats := newStats(name, p.now().UTC())

	tx, err := p.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPassFailed, name, err)
	}

	batch, err := pending(ctx, tx, limit)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("%w: %s: select pending: %w", ErrPassFailed, name, err)
	}
	logger.Info("pass started", "pending", len(batch), "limit", limit, "workers", p.cfg.Workers)

	writeCtx := context.WithoutCancel(ctx)
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(p.cfg.Workers)

	for _, f := range batch {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			w, err := process(ctx, f)
			if err != nil && ctx.Err() != nil {
				logger.Warn("record interrupted, left pending", "finding_id", f.ID, "error", err)
				return nil
			}

			mu.Lock()
			defer mu.Unlock()

			stats.Processed++
			if err != nil {
				logger.Error("record failed", "finding_id", f.ID, "error", err)
				stats.fail(f.ID, "%s failed for %s: %v", name, f.ID, err)
				return nil
			}

			stats.usage(w.tokensIn, w.tokensOut, w.cost)

			delta := &Stats{}
			err = tx.Guard(writeCtx, func() error {
				return w.persist(writeCtx, tx, delta)
			})
			if err != nil {
				logger.Error("record not persisted", "finding_id", f.ID, "error", err)
				stats.fail(f.ID, "%s failed for %s: persist: %v", name, f.ID, err)
				return nil
			}
			stats.add(delta)
			return nil
		})
	}
	g.Wait()

	if ctx.Err() != nil {
		stats.Interrupted = true
		logger.Warn("pass interrupted", "processed", stats.Processed, "pending", len(batch))
	}

	commitErr := tx.Commit()
	stats.finish(p.now().UTC())
	elapsed := stats.CompletedAt.Sub(stats.StartedAt)

	if commitErr != nil {
		p.metrics.RecordBatch(name, stats.Processed, stats.Processed, elapsed)
		return stats, fmt.Errorf("%w: %s: commit: %w", ErrPassFailed, name, commitErr)
	}
	p.metrics.RecordBatch(name, stats.Processed, len(stats.Errors), elapsed)

	logger.Info("pass complete",
		"processed", stats.Processed,
		"classified", stats.Classified,
		"healthcare", stats.Healthcare,
		"analyses", stats.AnalysesCreated,
		"posts", stats.PostsCreated,
		"errors", len(stats.Errors),
		"cost_usd", stats.CostUSD,
		"duration_seconds", stats.DurationSeconds,
	)
	return stats, nil
}

// Run classifies pending findings, then analyses classified healthcare
// findings, each pass bounded by limit.
func (p *Processor) Run(ctx context.Context, limit int) (*Stats, error) {
	cls, err := p.Classify(ctx, limit)
	if err != nil {
		return cls, err
	}
	an, err := p.Analyse(ctx, limit)
	if err != nil {
		if an == nil {
			return cls, err
		}
		return Combine(cls, an), err
	}

	combined := Combine(cls, an)
	p.logger.Info("processing run complete",
		"classified", combined.Classified,
		"analyses", combined.AnalysesCreated,
		"posts", combined.PostsCreated,
		"cost_usd", combined.CostUSD,
	)
	return combined, nil
}

// Task adapts Run to a scheduled background task.
func (p *Processor) Task() func(ctx context.Context) error {
	return func(ctx context.Context) error {
		_, err := p.Run(ctx, 0)
		return err
	}
}
