package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/JaimeStill/inquest/internal/config"
	"github.com/JaimeStill/inquest/internal/llm"
	"github.com/JaimeStill/inquest/internal/prompts"
)

// Overrides serves the active instruction override of a stage.
// prompts.System satisfies it.
type Overrides interface {
	Active(ctx context.Context, stage prompts.Stage) (*prompts.Prompt, error)
}

// Settings tunes the model calls made by every stage.
type Settings struct {
	Temperature         float64
	CreativeTemperature float64
	Timeout             time.Duration
	MaxRetries          int
	PromptVersion       string
}

// DefaultSettings matches the [llm] and [prompts] defaults.
func DefaultSettings() Settings {
	return Settings{
		Temperature:         0.3,
		CreativeTemperature: 0.7,
		Timeout:             120 * time.Second,
		MaxRetries:          3,
		PromptVersion:       "1.0.0",
	}
}

// SettingsFromConfig maps the [llm] and [prompts] sections onto Settings.
func SettingsFromConfig(l *config.LLMConfig, p *config.PromptsConfig) Settings {
	return Settings{
		Temperature:         l.Temperature,
		CreativeTemperature: l.CreativeTemperature,
		Timeout:             l.TimeoutDuration(),
		MaxRetries:          l.MaxRetries,
		PromptVersion:       p.Version,
	}
}

// Runtime bundles the dependencies that pipeline stages require.
// Prompts may be nil, in which case built-in instructions are used.
type Runtime struct {
	LLM       llm.Client
	Prompts   Overrides
	Templates *prompts.Resolver
	Settings  Settings
	Logger    *slog.Logger
}

func (rt *Runtime) config(maxTokens int, temperature float64) llm.Config {
	return llm.Config{
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Timeout:     rt.Settings.Timeout,
		MaxRetries:  rt.Settings.MaxRetries,
		JSONMode:    true,
	}
}

func (rt *Runtime) logger() *slog.Logger {
	if rt.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return rt.Logger
}
