package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/JaimeStill/inquest/internal/config"
	"github.com/JaimeStill/inquest/internal/infrastructure"
	"github.com/JaimeStill/inquest/internal/scheduler"
	"github.com/JaimeStill/inquest/internal/service"
	"github.com/JaimeStill/inquest/internal/sources"
	"github.com/JaimeStill/inquest/internal/store"
	"github.com/JaimeStill/inquest/internal/telemetry"
)

func newScrapeCommand(opts *options) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "scrape [source...]",
		Short: "Scrape sources now",
		Long: `Scrape the named sources, or every active source when none are named.
With --dry-run, sources come from the sources file and findings are kept in
memory and printed instead of being stored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				return dryScrape(cmd, opts, args)
			}

			a, err := open(opts)
			if err != nil {
				return err
			}
			defer a.close()

			codes := args
			if len(codes) == 0 {
				active, err := a.svc.Store.ActiveSources(cmd.Context())
				if err != nil {
					return err
				}
				codes = sourceCodes(active)
			}

			runs, err := scrapeAll(cmd.Context(), a.svc.Scheduler, codes, a.infra.Logger)
			if perr := newPrinter(cmd, opts).summaries(runs); perr != nil {
				return perr
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "scrape into memory without a database")
	return cmd
}

// scrapeAll runs each source in turn. A failed source does not stop the
// others; the failures are joined into the returned error.
func scrapeAll(ctx context.Context, sched *scheduler.Scheduler, codes []string, logger *slog.Logger) ([]*scheduler.RunSummary, error) {
	var (
		runs []*scheduler.RunSummary
		errs []error
	)
	for _, code := range codes {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		summary, err := sched.RunNow(ctx, code)
		if summary != nil {
			runs = append(runs, summary)
		}
		if err != nil {
			logger.Error("scrape failed", "source", code, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", code, err))
		}
	}
	return runs, errors.Join(errs...)
}

func dryScrape(cmd *cobra.Command, opts *options, args []string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	seeds, err := sources.LoadSeed(cfg.SourcesFile)
	if err != nil {
		return err
	}
	if len(seeds) == 0 {
		return fmt.Errorf("no sources defined in %q", cfg.SourcesFile)
	}

	srcs := make([]sources.Source, 0, len(seeds))
	for _, s := range seeds {
		srcs = append(srcs, s.Source())
	}
	mem := store.NewMemory(srcs...)

	codes := args
	if len(codes) == 0 {
		active, err := mem.ActiveSources(cmd.Context())
		if err != nil {
			return err
		}
		codes = sourceCodes(active)
	}

	logger := infrastructure.NewLogger(&cfg.Logging, os.Stderr)
	sched := dryScheduler(cfg, mem, logger)

	runs, err := scrapeAll(cmd.Context(), sched, codes, logger)
	p := newPrinter(cmd, opts)
	if perr := p.summaries(runs); perr != nil {
		return perr
	}
	if perr := p.findings(mem.Findings()); perr != nil {
		return perr
	}
	return err
}

func dryScheduler(cfg *config.Config, mem *store.Memory, logger *slog.Logger) *scheduler.Scheduler {
	metrics := telemetry.New(prometheus.NewRegistry())
	return service.NewScheduler(cfg, mem, nil, metrics, logger)
}

func sourceCodes(list []sources.Source) []string {
	codes := make([]string, 0, len(list))
	for _, s := range list {
		codes = append(codes, s.Code)
	}
	return codes
}
