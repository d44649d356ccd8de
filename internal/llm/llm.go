// Package llm is the language model gateway. A Gateway wraps one
// Provider with retries, pricing, and call metrics so pipeline stages see
// a single Complete operation regardless of vendor.
package llm

import (
	"context"
	"time"

	"github.com/JaimeStill/inquest/internal/config"
)

const (
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
)

// Config tunes one completion request.
type Config struct {
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	MaxRetries  int

	// JSONMode asks the provider for a bare JSON object.
	JSONMode bool
}

// DefaultConfig returns temperature 0.3, 4096 tokens, a 120s timeout,
// and three attempts.
func DefaultConfig() Config {
	return Config{
		Temperature: 0.3,
		MaxTokens:   4096,
		Timeout:     120 * time.Second,
		MaxRetries:  3,
	}
}

// FromSettings maps the [llm] section onto a request Config.
func FromSettings(c *config.LLMConfig) Config {
	return Config{
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
		Timeout:     c.TimeoutDuration(),
		MaxRetries:  c.MaxRetries,
	}
}

// Response is a completed call with its usage and cost.
type Response struct {
	Content   string        `json:"content"`
	TokensIn  int           `json:"tokens_in"`
	TokensOut int           `json:"tokens_out"`
	Cost      float64       `json:"cost_usd"`
	Model     string        `json:"model"`
	Provider  string        `json:"provider"`
	Latency   time.Duration `json:"latency"`
}

// TotalTokens returns input plus output tokens.
func (r *Response) TotalTokens() int {
	return r.TokensIn + r.TokensOut
}

// Client is what pipeline stages depend on. *Gateway satisfies it.
type Client interface {
	Complete(ctx context.Context, system, user string, cfg Config) (*Response, error)
}

// Request is the provider-neutral shape of one call.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
	JSONMode    bool
}

// Completion is a provider's normalized answer.
type Completion struct {
	Content   string
	TokensIn  int
	TokensOut int
}

// Provider performs a single call against one vendor API. Providers do
// not retry; the Gateway owns that policy.
type Provider interface {
	Name() string
	Model() string
	Complete(ctx context.Context, req Request) (Completion, error)
}
