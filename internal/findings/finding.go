// Package findings implements the captured-report domain: the finding record,
// its lifecycle status machine, and operator access.
package findings

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Finding is one captured report. (SourceID, ExternalID) is unique.
type Finding struct {
	ID                   uuid.UUID      `json:"id"`
	SourceID             uuid.UUID      `json:"source_id"`
	SourceCode           string         `json:"source_code"`
	ExternalID           string         `json:"external_id"`
	Title                string         `json:"title"`
	DeceasedName         string         `json:"deceased_name,omitempty"`
	CoronerName          string         `json:"coroner_name,omitempty"`
	DateOfDeath          *time.Time     `json:"date_of_death,omitempty"`
	DateOfFinding        *time.Time     `json:"date_of_finding,omitempty"`
	SourceURL            string         `json:"source_url"`
	PDFURL               string         `json:"pdf_url,omitempty"`
	PDFText              string         `json:"pdf_text,omitempty"`
	ContentText          string         `json:"content_text,omitempty"`
	ContentHTML          string         `json:"content_html,omitempty"`
	Categories           []string       `json:"categories"`
	IsHealthcare         *bool          `json:"is_healthcare"`
	HealthcareConfidence *float64       `json:"healthcare_confidence"`
	Metadata             map[string]any `json:"metadata"`
	Status               Status         `json:"status"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// Content returns the best available analysable text: extracted page text,
// then PDF text, then raw markup.
func (f Finding) Content() string {
	switch {
	case f.ContentText != "":
		return f.ContentText
	case f.PDFText != "":
		return f.PDFText
	default:
		return f.ContentHTML
	}
}

// Healthcare reports whether the finding was classified as healthcare-related
// with at least the given confidence.
func (f Finding) Healthcare(threshold float64) bool {
	if f.IsHealthcare == nil || !*f.IsHealthcare {
		return false
	}
	return f.HealthcareConfidence != nil && *f.HealthcareConfidence >= threshold
}

// CreateCommand carries the fields of a newly captured finding.
type CreateCommand struct {
	SourceID      uuid.UUID
	ExternalID    string
	Title         string
	DeceasedName  string
	CoronerName   string
	DateOfDeath   *time.Time
	DateOfFinding *time.Time
	SourceURL     string
	PDFURL        string
	PDFText       string
	ContentText   string
	ContentHTML   string
	Categories    []string
	Metadata      map[string]any
}

// Validate checks the required identity fields.
func (c CreateCommand) Validate() error {
	switch {
	case c.SourceID == uuid.Nil:
		return ErrInvalid
	case c.ExternalID == "", c.Title == "", c.SourceURL == "":
		return ErrInvalid
	}
	return nil
}

// UsageKey is the metadata entry holding the classification spend.
const UsageKey = "classification_usage"

// Usage is the model spend of one stage call.
type Usage struct {
	TokensIn  int     `json:"tokens_input"`
	TokensOut int     `json:"tokens_output"`
	CostUSD   float64 `json:"cost_usd"`
}

// Classification is the classify stage verdict recorded on a finding,
// together with what the call cost.
type Classification struct {
	IsHealthcare bool
	Confidence   float64
	Usage        Usage
}

// Metadata returns the entries merged into the finding's metadata.
func (c Classification) Metadata() map[string]any {
	return map[string]any{
		UsageKey: map[string]any{
			"tokens_input":  c.Usage.TokensIn,
			"tokens_output": c.Usage.TokensOut,
			"cost_usd":      c.Usage.CostUSD,
		},
	}
}

// ClassificationUsage reads back the spend recorded by ClassifyFinding.
// Findings classified without it report zero usage.
func (f Finding) ClassificationUsage() Usage {
	var u Usage
	v, ok := f.Metadata[UsageKey]
	if !ok {
		return u
	}
	data, err := json.Marshal(v)
	if err != nil {
		return u
	}
	if err := json.Unmarshal(data, &u); err != nil {
		return Usage{}
	}
	return u
}
