package workflow

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/JaimeStill/inquest/internal/analyses"
	"github.com/JaimeStill/inquest/internal/prompts"
)

// StageResult is the outcome of one stage call. When the response could
// not be decoded, Parsed is false, Value holds zero defaults, and Raw keeps
// the response text so later stages and operators can tell a degraded
// result from a genuinely empty one. Dropped names response members that
// were left at their defaults because their type did not fit.
type StageResult[T any] struct {
	Value     T        `json:"value"`
	Parsed    bool     `json:"parsed"`
	Dropped   []string `json:"dropped,omitempty"`
	Raw       string   `json:"raw,omitempty"`
	Provider  string   `json:"provider"`
	Model     string   `json:"model"`
	Override  string   `json:"override,omitempty"`
	TokensIn  int      `json:"tokens_in"`
	TokensOut int      `json:"tokens_out"`
	Cost      float64  `json:"cost_usd"`
}

// Classification is the classify stage output.
type Classification struct {
	IsHealthcare bool    `json:"is_healthcare"`
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning"`
}

// UnmarshalJSON reads the verdict leniently: is_healthcare may be a bool
// or a "true"/"false" string and confidence a number or numeric string.
// Missing or unreadable members take their zero value.
func (c *Classification) UnmarshalJSON(data []byte) error {
	r := gjson.ParseBytes(data)
	if !r.IsObject() {
		return fmt.Errorf("classification: unexpected %s", r.Type)
	}
	c.IsHealthcare = r.Get("is_healthcare").Bool()
	c.Confidence = r.Get("confidence").Float()
	c.Reasoning = r.Get("reasoning").String()
	return nil
}

// Healthcare applies the confidence threshold.
func (c Classification) Healthcare(threshold float64) bool {
	return c.IsHealthcare && c.Confidence >= threshold
}

// HumanFactorsReport is the human factors stage output.
type HumanFactorsReport struct {
	analyses.HumanFactors
	LatentHazards            []analyses.Hazard         `json:"latent_hazards"`
	ImprovementOpportunities []analyses.Recommendation `json:"improvement_opportunities"`
}

// Draft is the draft stage output.
type Draft struct {
	Title           string            `json:"title"`
	ContentMarkdown string            `json:"content_markdown"`
	Excerpt         string            `json:"excerpt"`
	KeyLearnings    analyses.TextList `json:"key_learnings"`
	Tags            analyses.TextList `json:"tags"`
}

// Result collects the stages that ran for one finding. Stages that did not
// run are nil.
type Result struct {
	Classification *StageResult[Classification]      `json:"classification,omitempty"`
	Extraction     *StageResult[analyses.Extraction] `json:"extraction,omitempty"`
	HumanFactors   *StageResult[HumanFactorsReport]  `json:"human_factors,omitempty"`
	Draft          *StageResult[Draft]               `json:"draft,omitempty"`
	StartedAt      time.Time                         `json:"started_at"`
	CompletedAt    time.Time                         `json:"completed_at"`
}

type usage struct {
	provider, model, override string
	in, out                   int
	cost                      float64
}

func (r *Result) stages() []usage {
	var out []usage
	if s := r.Classification; s != nil {
		out = append(out, usage{s.Provider, s.Model, s.Override, s.TokensIn, s.TokensOut, s.Cost})
	}
	if s := r.Extraction; s != nil {
		out = append(out, usage{s.Provider, s.Model, s.Override, s.TokensIn, s.TokensOut, s.Cost})
	}
	if s := r.HumanFactors; s != nil {
		out = append(out, usage{s.Provider, s.Model, s.Override, s.TokensIn, s.TokensOut, s.Cost})
	}
	if s := r.Draft; s != nil {
		out = append(out, usage{s.Provider, s.Model, s.Override, s.TokensIn, s.TokensOut, s.Cost})
	}
	return out
}

// TokensIn sums input tokens over the stages that ran.
func (r *Result) TokensIn() int {
	n := 0
	for _, s := range r.stages() {
		n += s.in
	}
	return n
}

// TokensOut sums output tokens over the stages that ran.
func (r *Result) TokensOut() int {
	n := 0
	for _, s := range r.stages() {
		n += s.out
	}
	return n
}

// Cost sums stage costs, rounded to six decimal places.
func (r *Result) Cost() float64 {
	c := 0.0
	for _, s := range r.stages() {
		c += s.cost
	}
	return math.Round(c*1e6) / 1e6
}

// Complete reports whether every analysis stage ran.
func (r *Result) Complete() bool {
	return r.Extraction != nil && r.HumanFactors != nil && r.Draft != nil
}

// Provider and Model report the gateway that served the last stage.
func (r *Result) Provider() string {
	s := r.stages()
	if len(s) == 0 {
		return ""
	}
	return s[len(s)-1].provider
}

func (r *Result) Model() string {
	s := r.stages()
	if len(s) == 0 {
		return ""
	}
	return s[len(s)-1].model
}

// PromptVersion tags base with every override used, in stage order.
func (r *Result) PromptVersion(base string) string {
	var names []string
	for _, s := range r.stages() {
		names = append(names, s.override)
	}
	return prompts.Version(base, names...)
}

// AnalysisCommand converts a complete result into an analysis record.
func (r *Result) AnalysisCommand(findingID uuid.UUID, promptBase string) analyses.CreateCommand {
	cmd := analyses.CreateCommand{
		FindingID:     findingID,
		Provider:      r.Provider(),
		Model:         r.Model(),
		PromptVersion: r.PromptVersion(promptBase),
		TokensInput:   r.TokensIn(),
		TokensOutput:  r.TokensOut(),
		CostUSD:       r.Cost(),
	}
	if r.Extraction != nil {
		cmd.Extraction = r.Extraction.Value
		cmd.Summary = r.Extraction.Value.Summary
	}
	if r.HumanFactors != nil {
		cmd.HumanFactors = r.HumanFactors.Value.HumanFactors
		cmd.LatentHazards = r.HumanFactors.Value.LatentHazards
		cmd.Recommendations = r.HumanFactors.Value.ImprovementOpportunities
	}
	return cmd
}
