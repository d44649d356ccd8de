package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/JaimeStill/inquest/internal/telemetry"
	"github.com/JaimeStill/inquest/pkg/retry"
)

// Options carries a Gateway's optional collaborators.
type Options struct {
	Metrics *telemetry.Metrics
	Logger  *slog.Logger

	// Sleep replaces the backoff wait. Nil waits on a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Gateway wraps a Provider with retries, pricing, and call metrics.
type Gateway struct {
	provider Provider
	pricing  Pricing
	metrics  *telemetry.Metrics
	logger   *slog.Logger
	sleep    func(ctx context.Context, d time.Duration) error
	now      func() time.Time
}

func New(provider Provider, pricing Pricing, opts Options) *Gateway {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Gateway{
		provider: provider,
		pricing:  pricing,
		metrics:  opts.Metrics,
		logger:   logger.With("system", "llm", "provider", provider.Name()),
		sleep:    opts.Sleep,
		now:      time.Now,
	}
}

func (g *Gateway) Provider() string { return g.provider.Name() }
func (g *Gateway) Model() string    { return g.provider.Model() }

// Complete runs one prompt. Every failed attempt is retried after
// 2^attempt seconds until cfg.MaxRetries attempts have been made; the last
// error is then returned unchanged in the chain. Timeout bounds each
// attempt separately.
func (g *Gateway) Complete(ctx context.Context, system, user string, cfg Config) (*Response, error) {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}

	req := Request{
		System:      system,
		User:        user,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		JSONMode:    cfg.JSONMode,
	}

	rc := retry.Config{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: time.Second,
		MaxDelay:     time.Minute,
		Multiplier:   2,
		Sleep:        g.sleep,
	}

	g.logger.Debug("llm request started",
		"model", g.provider.Model(),
		"temperature", cfg.Temperature,
		"max_tokens", cfg.MaxTokens,
	)

	start := g.now()
	var out Completion
	err := retry.Do(ctx, rc, func(ctx context.Context, attempt int) error {
		if cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()
		}

		c, err := g.provider.Complete(ctx, req)
		if err != nil {
			g.logger.Warn("llm request failed",
				"attempt", attempt+1,
				"max_attempts", max(cfg.MaxRetries, 1),
				"error", err,
			)
			return err
		}
		out = c
		return nil
	})
	latency := g.now().Sub(start)

	if err != nil {
		g.metrics.RecordLLM(g.provider.Name(), g.provider.Model(), 0, 0, 0, latency, err)
		g.logger.Error("llm request exhausted", "error", err)
		return nil, err
	}

	resp := &Response{
		Content:   out.Content,
		TokensIn:  out.TokensIn,
		TokensOut: out.TokensOut,
		Cost:      g.pricing.Cost(out.TokensIn, out.TokensOut),
		Model:     g.provider.Model(),
		Provider:  g.provider.Name(),
		Latency:   latency,
	}

	g.metrics.RecordLLM(resp.Provider, resp.Model, resp.TokensIn, resp.TokensOut, resp.Cost, latency, nil)
	g.logger.Info("llm request completed",
		"model", resp.Model,
		"tokens_input", resp.TokensIn,
		"tokens_output", resp.TokensOut,
		"cost_usd", resp.Cost,
		"latency_seconds", latency.Seconds(),
	)

	return resp, nil
}
