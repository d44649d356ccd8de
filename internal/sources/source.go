// Package sources implements the ingestion source domain: registered origins,
// their adapter configuration, and the YAML seed that registers them.
package sources

import (
	"time"

	"github.com/google/uuid"
)

// Source is a registered ingestion origin.
type Source struct {
	ID        uuid.UUID      `json:"id"`
	Code      string         `json:"code"`
	Name      string         `json:"name"`
	Country   string         `json:"country"`
	Region    string         `json:"region"`
	BaseURL   string         `json:"base_url"`
	Adapter   string         `json:"adapter"`
	Schedule  string         `json:"schedule"`
	Active    bool           `json:"active"`
	LastRunAt *time.Time     `json:"last_run_at"`
	Config    map[string]any `json:"config"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// AdapterCode is the registry key for the source: its adapter identifier,
// or the source code when none is set.
func (s Source) AdapterCode() string {
	if s.Adapter != "" {
		return s.Adapter
	}
	return s.Code
}
