package analyses

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Domain is one of the six SEIPS work-system domains.
type Domain string

const (
	DomainIndividual     Domain = "individual"
	DomainTeam           Domain = "team"
	DomainTask           Domain = "task"
	DomainTechnology     Domain = "technology"
	DomainEnvironment    Domain = "environment"
	DomainOrganisational Domain = "organisational"
)

// Domains returns the SEIPS domains in canonical order.
func Domains() []Domain {
	return []Domain{
		DomainIndividual,
		DomainTeam,
		DomainTask,
		DomainTechnology,
		DomainEnvironment,
		DomainOrganisational,
	}
}

// Severity grades a factor, hazard, or recommendation.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

func (s Severity) Valid() bool {
	return s == SeverityHigh || s == SeverityMedium || s == SeverityLow
}

// Extraction is the structured summary produced by the extract stage.
type Extraction struct {
	Summary                string         `json:"summary"`
	IncidentDate           string         `json:"incident_date,omitempty"`
	Location               string         `json:"location,omitempty"`
	PartiesInvolved        TextList       `json:"parties_involved"`
	SequenceOfEvents       TextList       `json:"sequence_of_events"`
	CoronerRecommendations TextList       `json:"coroner_recommendations"`
	HealthcareContext      map[string]any `json:"healthcare_context"`
}

// Factor is one contributing human factor.
type Factor struct {
	Factor      string   `json:"factor"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Evidence    string   `json:"evidence,omitempty"`
}

// HumanFactors holds factor lists for each SEIPS domain.
type HumanFactors struct {
	Individual     []Factor `json:"individual_factors"`
	Team           []Factor `json:"team_factors"`
	Task           []Factor `json:"task_factors"`
	Technology     []Factor `json:"technology_factors"`
	Environment    []Factor `json:"environment_factors"`
	Organisational []Factor `json:"organisational_factors"`
}

// ByDomain returns the factor list for d.
func (h HumanFactors) ByDomain(d Domain) []Factor {
	switch d {
	case DomainIndividual:
		return h.Individual
	case DomainTeam:
		return h.Team
	case DomainTask:
		return h.Task
	case DomainTechnology:
		return h.Technology
	case DomainEnvironment:
		return h.Environment
	case DomainOrganisational:
		return h.Organisational
	}
	return nil
}

// Count returns the number of factors across all domains.
func (h HumanFactors) Count() int {
	n := 0
	for _, d := range Domains() {
		n += len(h.ByDomain(d))
	}
	return n
}

// Hazard is a latent system weakness.
type Hazard struct {
	Hazard                 string   `json:"hazard"`
	Domain                 Domain   `json:"domain,omitempty"`
	PotentialForFutureHarm string   `json:"potential_for_future_harm,omitempty"`
	Detectability          string   `json:"detectability,omitempty"`
	Severity               Severity `json:"severity,omitempty"`
}

// Recommendation is an improvement opportunity.
type Recommendation struct {
	Recommendation      string   `json:"recommendation"`
	TargetDomain        Domain   `json:"target_domain,omitempty"`
	ImplementationLevel string   `json:"implementation_level,omitempty"`
	Priority            Severity `json:"priority,omitempty"`
}

// UnmarshalJSON accepts either an object or a bare string naming the factor.
func (f *Factor) UnmarshalJSON(data []byte) error {
	type plain Factor
	if s, ok := bareString(data); ok {
		*f = Factor{Factor: s}
		return nil
	}
	return json.Unmarshal(data, (*plain)(f))
}

// UnmarshalJSON accepts either an object or a bare string naming the hazard.
func (h *Hazard) UnmarshalJSON(data []byte) error {
	type plain Hazard
	if s, ok := bareString(data); ok {
		*h = Hazard{Hazard: s}
		return nil
	}
	return json.Unmarshal(data, (*plain)(h))
}

// UnmarshalJSON accepts either an object or a bare recommendation string.
func (r *Recommendation) UnmarshalJSON(data []byte) error {
	type plain Recommendation
	if s, ok := bareString(data); ok {
		*r = Recommendation{Recommendation: s}
		return nil
	}
	return json.Unmarshal(data, (*plain)(r))
}

// TextList is a list of short texts. Decoding accepts string items, object
// items (their scalar values joined in order, so {"name": "Dr A", "role":
// "registrar"} reads "Dr A - registrar"), and a lone string as a one-item
// list. null leaves the list empty.
type TextList []string

func (l *TextList) UnmarshalJSON(data []byte) error {
	r := gjson.ParseBytes(data)
	switch {
	case r.Type == gjson.Null:
		*l = nil
		return nil
	case r.Type == gjson.String:
		*l = TextList{r.String()}
		return nil
	case !r.IsArray():
		return fmt.Errorf("text list: unexpected %s", r.Type)
	}

	out := TextList{}
	for _, item := range r.Array() {
		if s := itemText(item); s != "" {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}

func itemText(item gjson.Result) string {
	if !item.IsObject() {
		if item.IsArray() || item.Type == gjson.Null {
			return ""
		}
		return item.String()
	}

	var parts []string
	item.ForEach(func(_, v gjson.Result) bool {
		if v.IsObject() || v.IsArray() || v.Type == gjson.Null {
			return true
		}
		if s := strings.TrimSpace(v.String()); s != "" {
			parts = append(parts, s)
		}
		return true
	})
	return strings.Join(parts, " - ")
}

func bareString(data []byte) (string, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", false
	}
	return s, true
}
