package storage

import (
	"fmt"

	"github.com/JaimeStill/inquest/pkg/envvar"
)

const (
	// BackendAzure stores reports in an Azure Blob Storage container.
	BackendAzure = "azure"
	// BackendLocal stores reports under a local directory.
	BackendLocal = "local"
)

// Config selects and configures the report archive backend.
// An empty Backend disables archiving.
type Config struct {
	Backend          string `toml:"backend"`
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	Directory        string `toml:"directory"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Backend          string
	ContainerName    string
	ConnectionString string
	Directory        string
}

// Enabled reports whether an archive backend is configured.
func (c *Config) Enabled() bool {
	return c.Backend != ""
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		c.loadEnv(env)
	}
	c.loadDefaults()
	return c.validate()
}

func (c *Config) Merge(overlay *Config) {
	for dst, src := range map[*string]string{
		&c.Backend:          overlay.Backend,
		&c.ContainerName:    overlay.ContainerName,
		&c.ConnectionString: overlay.ConnectionString,
		&c.Directory:        overlay.Directory,
	} {
		if src != "" {
			*dst = src
		}
	}
}

func (c *Config) loadDefaults() {
	if c.Backend == "" && c.ConnectionString != "" {
		c.Backend = BackendAzure
	}
	if c.ContainerName == "" {
		c.ContainerName = "reports"
	}
	if c.Directory == "" {
		c.Directory = "data/reports"
	}
}

func (c *Config) loadEnv(env *Env) {
	envvar.String(env.Backend, &c.Backend)
	envvar.String(env.ContainerName, &c.ContainerName)
	envvar.String(env.ConnectionString, &c.ConnectionString)
	envvar.String(env.Directory, &c.Directory)
}

func (c *Config) validate() error {
	switch c.Backend {
	case "":
		return nil
	case BackendAzure:
		if c.ConnectionString == "" {
			return fmt.Errorf("connection_string required for azure backend")
		}
	case BackendLocal:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	return nil
}
