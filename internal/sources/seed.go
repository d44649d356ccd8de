package sources

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Seed is one source definition from the seed file.
// Active applies only when the source is first inserted.
type Seed struct {
	Code     string         `yaml:"code"`
	Name     string         `yaml:"name"`
	Country  string         `yaml:"country"`
	Region   string         `yaml:"region"`
	BaseURL  string         `yaml:"base_url"`
	Adapter  string         `yaml:"adapter"`
	Schedule string         `yaml:"schedule"`
	Active   *bool          `yaml:"active"`
	Config   map[string]any `yaml:"config"`
}

type seedFile struct {
	Sources []Seed `yaml:"sources"`
}

// LoadSeed reads source definitions from a YAML file.
// A missing file yields no seeds and no error.
func LoadSeed(path string) ([]Seed, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and validates source definitions.
func ParseSeed(data []byte) ([]Seed, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	seen := make(map[string]bool, len(f.Sources))
	for i := range f.Sources {
		s := &f.Sources[i]
		if err := s.normalize(); err != nil {
			return nil, fmt.Errorf("%w: source %d: %w", ErrInvalid, i, err)
		}
		if seen[s.Code] {
			return nil, fmt.Errorf("%w: duplicate code %q", ErrInvalid, s.Code)
		}
		seen[s.Code] = true
	}

	return f.Sources, nil
}

// IsActive reports the initial activity of a seeded source, defaulting to true.
func (s Seed) IsActive() bool {
	return s.Active == nil || *s.Active
}

// Source returns the seed as an unsaved Source.
func (s Seed) Source() Source {
	return Source{
		Code:     s.Code,
		Name:     s.Name,
		Country:  s.Country,
		Region:   s.Region,
		BaseURL:  s.BaseURL,
		Adapter:  s.Adapter,
		Schedule: s.Schedule,
		Active:   s.IsActive(),
		Config:   s.Config,
	}
}

func (s *Seed) normalize() error {
	if s.Code == "" {
		return errors.New("code required")
	}
	if s.Name == "" {
		s.Name = s.Code
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s: base_url must be an absolute URL", s.Code)
	}
	if s.Schedule != "" {
		if _, err := cron.ParseStandard(s.Schedule); err != nil {
			return fmt.Errorf("%s: invalid schedule: %w", s.Code, err)
		}
	}
	if s.Config == nil {
		s.Config = map[string]any{}
	}
	return nil
}
