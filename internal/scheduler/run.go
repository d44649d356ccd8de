package scheduler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/inquest/internal/adapters"
	"github.com/JaimeStill/inquest/internal/fetch"
	"github.com/JaimeStill/inquest/internal/findings"
	"github.com/JaimeStill/inquest/internal/sources"
	"github.com/JaimeStill/inquest/pkg/storage"
)

// Fetcher is the transport a run uses. *fetch.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url string, opts fetch.Options) (*fetch.Document, error)
	Download(ctx context.Context, url string) ([]byte, error)
	ExtractText(data []byte) (string, error)
	Close() error
}

// FetcherFactory builds the transport for one run of src.
type FetcherFactory func(src sources.Source, settings adapters.Settings) (Fetcher, error)

// NewFetcherFactory returns a factory creating fetch clients from base.
// A source's request_delay replaces the base delay when configured.
func NewFetcherFactory(base fetch.Config, logger *slog.Logger) FetcherFactory {
	return func(src sources.Source, settings adapters.Settings) (Fetcher, error) {
		cfg := base
		if _, ok := src.Config["request_delay"]; ok {
			cfg.RequestDelay = settings.Delay()
		}
		return fetch.New(cfg, logger.With("source", src.Code))
	}
}

// scrape walks the listing pages of src and returns every candidate it
// completed. Cancellation stops the walk but keeps what was collected.
func (s *Scheduler) scrape(ctx context.Context, src sources.Source, adapter adapters.Adapter, fetcher Fetcher, summary *RunSummary) ([]adapters.Candidate, error) {
	settings := adapter.Settings()
	opts := settings.FetchOptions()
	logger := s.logger.With("source", src.Code)

	var collected []adapters.Candidate
	pageURL := adapter.ListingURL(1)

	for pageURL != "" && summary.PagesScraped+summary.FailedPages < settings.MaxPages {
		if ctx.Err() != nil {
			summary.warnf("run cancelled before %s: %v", pageURL, ctx.Err())
			break
		}

		page := summary.PagesScraped + summary.FailedPages + 1
		logger.Info("scraping listing page", "page", page, "url", pageURL)

		candidates, next, err := s.listing(ctx, adapter, fetcher, pageURL, opts)
		if err != nil {
			summary.FailedPages++
			summary.errorf("page %d failed: %s: %v", page, pageURL, err)
			logger.Error("listing page failed", "page", page, "url", pageURL, "error", err)

			if summary.PagesScraped == 0 {
				return collected, fmt.Errorf("%w: %s: first listing page: %w", ErrRunFailed, src.Code, err)
			}
			pageURL = adapter.ListingURL(page + 1)
			continue
		}

		for _, c := range candidates {
			if ctx.Err() != nil {
				break
			}
			collected = append(collected, s.complete(ctx, src, adapter, fetcher, c, summary, logger))
		}

		summary.PagesScraped++
		pageURL = next
	}

	return collected, nil
}

func (s *Scheduler) listing(ctx context.Context, adapter adapters.Adapter, fetcher Fetcher, pageURL string, opts fetch.Options) ([]adapters.Candidate, string, error) {
	doc, err := fetcher.Fetch(ctx, pageURL, opts)
	if err != nil {
		return nil, "", err
	}
	return adapter.ParseListing(doc, pageURL)
}

// complete fetches the candidate's detail page and PDF. Failures degrade
// to the listing-level candidate and are reported as warnings.
func (s *Scheduler) complete(ctx context.Context, src sources.Source, adapter adapters.Adapter, fetcher Fetcher, c adapters.Candidate, summary *RunSummary, logger *slog.Logger) adapters.Candidate {
	doc, err := fetcher.Fetch(ctx, c.SourceURL, adapter.Settings().FetchOptions())
	if err != nil {
		summary.warnf("detail fetch failed: %s: %v", c.ExternalID, err)
		logger.Warn("detail fetch failed", "external_id", c.ExternalID, "error", err)
		return c
	}

	detailed, err := adapter.ParseDetail(doc, c)
	if err != nil {
		summary.warnf("detail parse failed: %s: %v", c.ExternalID, err)
		logger.Warn("detail parse failed", "external_id", c.ExternalID, "error", err)
		return c
	}

	if detailed.PDFURL != "" && ctx.Err() == nil {
		s.attachPDF(ctx, src, fetcher, &detailed, summary, logger)
	}
	return detailed
}

func (s *Scheduler) attachPDF(ctx context.Context, src sources.Source, fetcher Fetcher, c *adapters.Candidate, summary *RunSummary, logger *slog.Logger) {
	if c.Metadata == nil {
		c.Metadata = make(map[string]any)
	}

	data, err := fetcher.Download(ctx, c.PDFURL)
	if err != nil {
		summary.warnf("pdf download failed: %s: %v", c.ExternalID, err)
		logger.Warn("pdf download failed", "external_id", c.ExternalID, "url", c.PDFURL, "error", err)
		return
	}

	text, err := fetcher.ExtractText(data)
	if err != nil {
		summary.warnf("pdf extraction failed: %s: %v", c.ExternalID, err)
		logger.Warn("pdf extraction failed", "external_id", c.ExternalID, "error", err)
	} else {
		c.PDFText = text
	}

	if pages, err := fetch.PageCount(data); err == nil {
		c.Metadata["pdf_pages"] = pages
	}

	if s.archive == nil {
		return
	}
	key := storage.ReportKey(src.Code, c.ExternalID)
	if err := s.archive.Upload(ctx, key, bytes.NewReader(data), "application/pdf"); err != nil {
		summary.warnf("pdf archive failed: %s: %v", c.ExternalID, err)
		logger.Warn("pdf archive failed", "external_id", c.ExternalID, "key", key, "error", err)
		return
	}
	c.Metadata["pdf_archive_key"] = key
}

// persist offers every candidate to the store in one transaction and
// stamps the source's last run.
func (s *Scheduler) persist(ctx context.Context, src sources.Source, candidates []adapters.Candidate, summary *RunSummary) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range candidates {
		cmd := c.Command(src.ID)
		err := tx.Guard(ctx, func() error {
			exists, err := tx.ExistsFinding(ctx, src.ID, cmd.ExternalID)
			if err != nil {
				return err
			}
			if exists {
				return findings.ErrDuplicate
			}
			_, err = tx.CreateFinding(ctx, cmd)
			return err
		})

		switch {
		case err == nil:
			summary.NewFindings++
		case errors.Is(err, findings.ErrDuplicate):
			summary.DuplicateFindings++
		default:
			summary.errorf("persist %s: %v", cmd.ExternalID, err)
			s.logger.Error("finding persist failed", "source", src.Code, "external_id", cmd.ExternalID, "error", err)
		}
	}

	if err := tx.TouchSource(ctx, src.ID, s.now()); err != nil {
		return err
	}
	return tx.Commit()
}
