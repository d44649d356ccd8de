package middleware

import "github.com/JaimeStill/inquest/pkg/envvar"

// CORSConfig is the cross-origin policy of the operator API. Origins may
// contain "*" to admit any origin.
type CORSConfig struct {
	Enabled          bool     `toml:"enabled"`
	Origins          []string `toml:"origins"`
	AllowedMethods   []string `toml:"allowed_methods"`
	AllowedHeaders   []string `toml:"allowed_headers"`
	AllowCredentials bool     `toml:"allow_credentials"`
	MaxAge           int      `toml:"max_age"`
}

// CORSEnv names the environment variables that override CORSConfig.
type CORSEnv struct {
	Enabled          string
	Origins          string
	AllowedMethods   string
	AllowedHeaders   string
	AllowCredentials string
	MaxAge           string
}

func (c *CORSConfig) Finalize(env *CORSEnv) error {
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Content-Type", "Authorization"}
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 3600
	}

	if env == nil {
		return nil
	}
	envvar.Bool(env.Enabled, &c.Enabled)
	envvar.List(env.Origins, &c.Origins)
	envvar.List(env.AllowedMethods, &c.AllowedMethods)
	envvar.List(env.AllowedHeaders, &c.AllowedHeaders)
	envvar.Bool(env.AllowCredentials, &c.AllowCredentials)
	envvar.Int(env.MaxAge, &c.MaxAge)
	return nil
}

// Merge takes the overlay's booleans unconditionally and its lists and
// max age when set.
func (c *CORSConfig) Merge(overlay *CORSConfig) {
	c.Enabled = overlay.Enabled
	c.AllowCredentials = overlay.AllowCredentials

	for _, f := range []struct{ dst, src *[]string }{
		{&c.Origins, &overlay.Origins},
		{&c.AllowedMethods, &overlay.AllowedMethods},
		{&c.AllowedHeaders, &overlay.AllowedHeaders},
	} {
		if *f.src != nil {
			*f.dst = *f.src
		}
	}
	if overlay.MaxAge > 0 {
		c.MaxAge = overlay.MaxAge
	}
}
