package config

import (
	"fmt"
	"time"

	"github.com/JaimeStill/inquest/pkg/envvar"
)

const (
	EnvLLMProvider            = "INQUEST_LLM_PROVIDER"
	EnvLLMTemperature         = "INQUEST_LLM_TEMPERATURE"
	EnvLLMCreativeTemperature = "INQUEST_LLM_CREATIVE_TEMPERATURE"
	EnvLLMMaxTokens           = "INQUEST_LLM_MAX_TOKENS"
	EnvLLMTimeout             = "INQUEST_LLM_TIMEOUT"
	EnvLLMMaxRetries          = "INQUEST_LLM_MAX_RETRIES"
)

// ProviderEnv names the environment variables for one provider section.
type ProviderEnv struct {
	APIKey      string
	Model       string
	BaseURL     string
	InputPrice  string
	OutputPrice string
}

var anthropicEnv = &ProviderEnv{
	APIKey:      "INQUEST_ANTHROPIC_API_KEY",
	Model:       "INQUEST_ANTHROPIC_MODEL",
	BaseURL:     "INQUEST_ANTHROPIC_BASE_URL",
	InputPrice:  "INQUEST_ANTHROPIC_INPUT_PRICE",
	OutputPrice: "INQUEST_ANTHROPIC_OUTPUT_PRICE",
}

var openaiEnv = &ProviderEnv{
	APIKey:      "INQUEST_OPENAI_API_KEY",
	Model:       "INQUEST_OPENAI_MODEL",
	BaseURL:     "INQUEST_OPENAI_BASE_URL",
	InputPrice:  "INQUEST_OPENAI_INPUT_PRICE",
	OutputPrice: "INQUEST_OPENAI_OUTPUT_PRICE",
}

// ProviderConfig holds credentials, model, and per-1K-token pricing for
// one language-model provider.
type ProviderConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	BaseURL     string  `toml:"base_url"`
	InputPrice  float64 `toml:"input_price"`
	OutputPrice float64 `toml:"output_price"`
}

// Configured reports whether the provider has credentials.
func (c *ProviderConfig) Configured() bool {
	return c.APIKey != ""
}

func (c *ProviderConfig) Merge(overlay *ProviderConfig) {
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.InputPrice != 0 {
		c.InputPrice = overlay.InputPrice
	}
	if overlay.OutputPrice != 0 {
		c.OutputPrice = overlay.OutputPrice
	}
}

func (c *ProviderConfig) finalize(defaults ProviderConfig, env *ProviderEnv) error {
	if c.Model == "" {
		c.Model = defaults.Model
	}
	if c.BaseURL == "" {
		c.BaseURL = defaults.BaseURL
	}
	if c.InputPrice == 0 {
		c.InputPrice = defaults.InputPrice
	}
	if c.OutputPrice == 0 {
		c.OutputPrice = defaults.OutputPrice
	}

	envvar.String(env.APIKey, &c.APIKey)
	envvar.String(env.Model, &c.Model)
	envvar.String(env.BaseURL, &c.BaseURL)
	envvar.Float(env.InputPrice, &c.InputPrice)
	envvar.Float(env.OutputPrice, &c.OutputPrice)

	if c.InputPrice < 0 || c.OutputPrice < 0 {
		return fmt.Errorf("prices must not be negative")
	}
	return nil
}

// LLMConfig holds gateway defaults and the provider sections.
type LLMConfig struct {
	Provider            string         `toml:"provider"`
	Temperature         float64        `toml:"temperature"`
	CreativeTemperature float64        `toml:"creative_temperature"`
	MaxTokens           int            `toml:"max_tokens"`
	Timeout             string         `toml:"timeout"`
	MaxRetries          int            `toml:"max_retries"`
	Anthropic           ProviderConfig `toml:"anthropic"`
	OpenAI              ProviderConfig `toml:"openai"`
}

func (c *LLMConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *LLMConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	if err := c.Anthropic.finalize(ProviderConfig{
		Model:       "claude-sonnet-4-20250514",
		InputPrice:  0.003,
		OutputPrice: 0.015,
	}, anthropicEnv); err != nil {
		return fmt.Errorf("anthropic: %w", err)
	}
	if err := c.OpenAI.finalize(ProviderConfig{
		Model:       "gpt-4-turbo",
		BaseURL:     "https://api.openai.com/v1",
		InputPrice:  0.01,
		OutputPrice: 0.03,
	}, openaiEnv); err != nil {
		return fmt.Errorf("openai: %w", err)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *LLMConfig) Merge(overlay *LLMConfig) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.Temperature != 0 {
		c.Temperature = overlay.Temperature
	}
	if overlay.CreativeTemperature != 0 {
		c.CreativeTemperature = overlay.CreativeTemperature
	}
	if overlay.MaxTokens != 0 {
		c.MaxTokens = overlay.MaxTokens
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxRetries != 0 {
		c.MaxRetries = overlay.MaxRetries
	}
	c.Anthropic.Merge(&overlay.Anthropic)
	c.OpenAI.Merge(&overlay.OpenAI)
}

func (c *LLMConfig) loadDefaults() {
	if c.Provider == "" {
		c.Provider = "claude"
	}
	if c.Temperature == 0 {
		c.Temperature = 0.3
	}
	if c.CreativeTemperature == 0 {
		c.CreativeTemperature = 0.7
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 4096
	}
	if c.Timeout == "" {
		c.Timeout = "120s"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
}

func (c *LLMConfig) loadEnv() {
	envvar.String(EnvLLMProvider, &c.Provider)
	envvar.Float(EnvLLMTemperature, &c.Temperature)
	envvar.Float(EnvLLMCreativeTemperature, &c.CreativeTemperature)
	envvar.PositiveInt(EnvLLMMaxTokens, &c.MaxTokens)
	envvar.String(EnvLLMTimeout, &c.Timeout)
	envvar.PositiveInt(EnvLLMMaxRetries, &c.MaxRetries)
}

func (c *LLMConfig) validate() error {
	switch c.Provider {
	case "claude", "openai":
	default:
		return fmt.Errorf("unknown provider: %q", c.Provider)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature out of range: %v", c.Temperature)
	}
	if c.CreativeTemperature < 0 || c.CreativeTemperature > 2 {
		return fmt.Errorf("creative_temperature out of range: %v", c.CreativeTemperature)
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("max_tokens must be positive")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be positive")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
