package llm

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/inquest/internal/config"
)

// NewProvider builds the named provider from its settings.
func NewProvider(name string, pc config.ProviderConfig) (Provider, Pricing, error) {
	pricing := Pricing{Input: pc.InputPrice, Output: pc.OutputPrice}

	switch strings.ToLower(name) {
	case ProviderClaude:
		return NewAnthropic(pc.APIKey, pc.Model, pc.BaseURL), pricing, nil
	case ProviderOpenAI:
		return NewOpenAI(pc.APIKey, pc.Model, pc.BaseURL, nil), pricing, nil
	}
	return nil, Pricing{}, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
}

func section(cfg *config.LLMConfig, name string) config.ProviderConfig {
	switch name {
	case ProviderClaude:
		return cfg.Anthropic
	case ProviderOpenAI:
		return cfg.OpenAI
	}
	return config.ProviderConfig{}
}

func other(name string) string {
	if name == ProviderOpenAI {
		return ProviderClaude
	}
	return ProviderOpenAI
}

// NewDefault creates a Gateway for the configured provider. It returns
// ErrNoProvider when that provider has no credentials; callers then try
// NewFallback.
func NewDefault(cfg *config.LLMConfig, opts Options) (*Gateway, error) {
	name := strings.ToLower(cfg.Provider)
	pc := section(cfg, name)
	if !pc.Configured() {
		return nil, fmt.Errorf("%w: %s has no credentials", ErrNoProvider, name)
	}
	provider, pricing, err := NewProvider(name, pc)
	if err != nil {
		return nil, err
	}
	return New(provider, pricing, opts), nil
}

// NewFallback creates a Gateway for the provider other than primary. It
// returns ErrNoProvider when that provider has no credentials.
func NewFallback(cfg *config.LLMConfig, primary string, opts Options) (*Gateway, error) {
	name := other(strings.ToLower(primary))
	pc := section(cfg, name)
	if !pc.Configured() {
		return nil, fmt.Errorf("%w: no fallback for %s", ErrNoProvider, primary)
	}
	provider, pricing, err := NewProvider(name, pc)
	if err != nil {
		return nil, err
	}
	return New(provider, pricing, opts), nil
}
