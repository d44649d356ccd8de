package analyses

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/JaimeStill/inquest/pkg/query"
	"github.com/JaimeStill/inquest/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "analyses", "a").
	Project("id", "ID").
	Project("finding_id", "FindingID").
	Project("provider", "Provider").
	Project("model", "Model").
	Project("prompt_version", "PromptVersion").
	Project("summary", "Summary").
	Project("extraction", "Extraction").
	Project("human_factors", "HumanFactors").
	Project("latent_hazards", "LatentHazards").
	Project("recommendations", "Recommendations").
	Project("tokens_input", "TokensInput").
	Project("tokens_output", "TokensOutput").
	Project("cost_usd", "CostUSD").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Projection exposes the analysis column mapping to the record store.
func Projection() *query.ProjectionMap {
	return projection
}

// Filters contains optional filtering criteria for analysis queries.
type Filters struct {
	FindingID *uuid.UUID `json:"finding_id,omitempty"`
	Provider  *string    `json:"provider,omitempty"`
}

func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("FindingID", f.FindingID).
		WhereEquals("Provider", f.Provider)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	return Filters{
		FindingID: query.Param(values, "finding_id", uuid.Parse),
		Provider:  query.Param(values, "provider", query.Text),
	}
}

// Scan reads a row selected with Projection columns.
func Scan(s repository.Scanner) (Analysis, error) {
	var a Analysis
	err := s.Scan(
		&a.ID,
		&a.FindingID,
		&a.Provider,
		&a.Model,
		&a.PromptVersion,
		&a.Summary,
		repository.ScanJSON(&a.Extraction),
		repository.ScanJSON(&a.HumanFactors),
		repository.ScanJSON(&a.LatentHazards),
		repository.ScanJSON(&a.Recommendations),
		&a.TokensInput,
		&a.TokensOutput,
		&a.CostUSD,
		&a.CreatedAt,
	)
	return a, err
}
