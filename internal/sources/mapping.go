package sources

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/inquest/pkg/query"
	"github.com/JaimeStill/inquest/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "sources", "s").
	Project("id", "ID").
	Project("code", "Code").
	Project("name", "Name").
	Project("country", "Country").
	Project("region", "Region").
	Project("base_url", "BaseURL").
	Project("adapter", "Adapter").
	Project("schedule", "Schedule").
	Project("active", "Active").
	Project("last_run_at", "LastRunAt").
	Project("config", "Config").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{Field: "Code"}

// Projection exposes the source column mapping to the record store.
func Projection() *query.ProjectionMap {
	return projection
}

// Filters contains optional filtering criteria for source queries.
type Filters struct {
	Country *string `json:"country,omitempty"`
	Active  *bool   `json:"active,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Country", f.Country).
		WhereEquals("Active", f.Active)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	return Filters{
		Country: query.Param(values, "country", query.Text),
		Active:  query.Param(values, "active", strconv.ParseBool),
	}
}

// Scan reads a row selected with Projection columns.
func Scan(s repository.Scanner) (Source, error) {
	var src Source
	err := s.Scan(
		&src.ID,
		&src.Code,
		&src.Name,
		&src.Country,
		&src.Region,
		&src.BaseURL,
		&src.Adapter,
		&src.Schedule,
		&src.Active,
		&src.LastRunAt,
		repository.ScanJSON(&src.Config),
		&src.CreatedAt,
		&src.UpdatedAt,
	)
	if src.Config == nil {
		src.Config = map[string]any{}
	}
	return src, err
}
