// Package analyses implements the analysis domain: the structured output of
// one pipeline run over a finding, organised by the SEIPS human-factors
// domains.
package analyses

import (
	"time"

	"github.com/google/uuid"
)

// Analysis is one immutable pipeline run over a finding. The most recent
// analysis for a finding is authoritative.
type Analysis struct {
	ID              uuid.UUID        `json:"id"`
	FindingID       uuid.UUID        `json:"finding_id"`
	Provider        string           `json:"provider"`
	Model           string           `json:"model"`
	PromptVersion   string           `json:"prompt_version"`
	Summary         string           `json:"summary"`
	Extraction      Extraction       `json:"extraction"`
	HumanFactors    HumanFactors     `json:"human_factors"`
	LatentHazards   []Hazard         `json:"latent_hazards"`
	Recommendations []Recommendation `json:"recommendations"`
	TokensInput     int              `json:"tokens_input"`
	TokensOutput    int              `json:"tokens_output"`
	CostUSD         float64          `json:"cost_usd"`
	CreatedAt       time.Time        `json:"created_at"`
}

// CreateCommand carries a completed pipeline result for persistence.
type CreateCommand struct {
	FindingID       uuid.UUID
	Provider        string
	Model           string
	PromptVersion   string
	Summary         string
	Extraction      Extraction
	HumanFactors    HumanFactors
	LatentHazards   []Hazard
	Recommendations []Recommendation
	TokensInput     int
	TokensOutput    int
	CostUSD         float64
}

func (c CreateCommand) Validate() error {
	if c.FindingID == uuid.Nil || c.Provider == "" || c.Model == "" {
		return ErrInvalid
	}
	return nil
}
