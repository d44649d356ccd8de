package config

import "github.com/JaimeStill/inquest/pkg/envvar"

const (
	EnvPromptsTemplatesDir = "INQUEST_PROMPTS_TEMPLATES_DIR"
	EnvPromptsVersion      = "INQUEST_PROMPTS_VERSION"
	EnvPromptsWatch        = "INQUEST_PROMPTS_WATCH"
)

// PromptsConfig locates user prompt templates and names the prompt version
// recorded on every analysis.
type PromptsConfig struct {
	TemplatesDir string `toml:"templates_dir"`
	Version      string `toml:"version"`
	Watch        bool   `toml:"watch"`
}

// Finalize applies defaults and environment variable overrides.
func (c *PromptsConfig) Finalize() error {
	if c.TemplatesDir == "" {
		c.TemplatesDir = "config/prompts"
	}
	if c.Version == "" {
		c.Version = "1.0.0"
	}
	envvar.String(EnvPromptsTemplatesDir, &c.TemplatesDir)
	envvar.String(EnvPromptsVersion, &c.Version)
	envvar.Bool(EnvPromptsWatch, &c.Watch)
	return nil
}

// Merge overwrites non-zero fields from overlay. Watch always applies.
func (c *PromptsConfig) Merge(overlay *PromptsConfig) {
	if overlay.TemplatesDir != "" {
		c.TemplatesDir = overlay.TemplatesDir
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Watch = overlay.Watch
}
