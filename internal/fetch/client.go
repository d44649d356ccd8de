// Package fetch is the transport used by scrape runs: politeness-limited,
// retrying HTTP with optional headless rendering, binary downloads, and
// PDF text extraction.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/JaimeStill/inquest/pkg/retry"
)

// Mode selects how a page is retrieved.
type Mode int

const (
	Plain Mode = iota
	Rendered
)

// Options tune a single Fetch.
type Options struct {
	Mode Mode
	// WaitSelector is awaited, bounded, before rendered markup is captured.
	WaitSelector string
}

// Document is a fetched page.
type Document struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        []byte
	Rendered    bool
}

// Client fetches on behalf of one scrape run. Requests are spaced by the
// configured delay per host; the first request is not delayed.
type Client struct {
	cfg        Config
	logger     *slog.Logger
	extractors []Extractor
	renderer   *renderer

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates a Client. It returns ErrNoExtractor when none of the
// configured extractors is known.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	cfg.applyDefaults()

	extractors, err := Extractors(cfg.Extractors...)
	if err != nil {
		return nil, err
	}

	logger = logger.With("system", "fetch")
	return &Client{
		cfg:        cfg,
		logger:     logger,
		extractors: extractors,
		renderer:   newRenderer(cfg.UserAgent, cfg.RenderTimeout, logger),
		limiters:   make(map[string]*rate.Limiter),
	}, nil
}

// Close tears down the headless browser if one was started.
func (c *Client) Close() error {
	return c.renderer.close()
}

// Fetch retrieves url as a document, rendering it in a headless browser
// when opts.Mode is Rendered.
func (c *Client) Fetch(ctx context.Context, rawURL string, opts Options) (*Document, error) {
	var doc *Document

	err := c.do(ctx, rawURL, func(ctx context.Context) error {
		var err error
		if opts.Mode == Rendered {
			doc, err = c.renderer.render(ctx, rawURL, opts.WaitSelector)
			return err
		}
		doc, err = c.get(ctx, rawURL)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Download retrieves a binary resource such as a PDF attachment.
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	doc, err := c.Fetch(ctx, rawURL, Options{Mode: Plain})
	if err != nil {
		return nil, err
	}
	return doc.Body, nil
}

// ExtractText returns the cleaned text of a PDF, trying each configured
// extractor in order.
func (c *Client) ExtractText(data []byte) (string, error) {
	return ExtractText(c.extractors, data)
}

func (c *Client) do(ctx context.Context, rawURL string, fn func(ctx context.Context) error) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("%w: invalid url %q", ErrFetchFailed, rawURL)
	}

	if c.cfg.Robots != nil {
		allowed, err := c.cfg.Robots.Allowed(ctx, rawURL)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrFetchFailed, err)
		}
		if !allowed {
			return fmt.Errorf("%w: %s", ErrDisallowed, rawURL)
		}
	}

	limiter := c.limiter(u.Host)

	rc := retry.Config{
		MaxAttempts:  c.cfg.MaxAttempts,
		InitialDelay: c.cfg.BackoffBase,
		Multiplier:   2,
		MaxDelay:     c.cfg.BackoffBase * 64,
		Retryable:    retryable,
		Sleep:        c.cfg.Sleep,
	}

	err = retry.Do(ctx, rc, func(ctx context.Context, attempt int) error {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		err := fn(ctx)
		if err != nil && attempt+1 < c.cfg.MaxAttempts && retryable(err) {
			c.logger.Warn("fetch attempt failed", "url", rawURL, "attempt", attempt+1, "error", err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFetchFailed, rawURL, err)
	}
	return nil
}

// limiter returns the host's limiter, raising its interval to the host's
// robots.txt crawl delay when that is longer.
func (c *Client) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	host = strings.ToLower(host)
	delay := c.cfg.RequestDelay
	if c.cfg.Robots != nil {
		if cd := c.cfg.Robots.CrawlDelay(host); cd > delay {
			delay = cd
		}
	}

	l, ok := c.limiters[host]
	if !ok {
		l = rate.NewLimiter(every(delay), 1)
		c.limiters[host] = l
		return l
	}
	if lim := every(delay); lim < l.Limit() {
		l.SetLimit(lim)
	}
	return l
}

func every(d time.Duration) rate.Limit {
	if d <= 0 {
		return rate.Inf
	}
	return rate.Every(d)
}

func (c *Client) get(ctx context.Context, rawURL string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf;q=0.9,*/*;q=0.8")

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBodySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > c.cfg.MaxBodySize {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, rawURL)
	}

	return &Document{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// retryable excludes cancellation and failures a retry cannot fix. An
// expired run deadline stops the retry loop on its own.
func retryable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, ErrTooLarge), errors.Is(err, ErrDisallowed):
		return false
	}
	return true
}
