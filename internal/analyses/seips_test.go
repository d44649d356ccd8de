package analyses_test

import (
	"encoding/json"
	"testing"

	"github.com/JaimeStill/inquest/internal/analyses"
)

func TestHumanFactorsByDomain(t *testing.T) {
	hf := analyses.HumanFactors{
		Individual:     []analyses.Factor{{Factor: "fatigue"}},
		Team:           []analyses.Factor{{Factor: "handover"}, {Factor: "hierarchy"}},
		Organisational: []analyses.Factor{{Factor: "staffing"}},
	}

	tests := []struct {
		domain analyses.Domain
		want   int
	}{
		{analyses.DomainIndividual, 1},
		{analyses.DomainTeam, 2},
		{analyses.DomainTask, 0},
		{analyses.DomainTechnology, 0},
		{analyses.DomainEnvironment, 0},
		{analyses.DomainOrganisational, 1},
		{analyses.Domain("unknown"), 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.domain), func(t *testing.T) {
			if got := len(hf.ByDomain(tt.domain)); got != tt.want {
				t.Errorf("len(ByDomain(%s)) = %d, want %d", tt.domain, got, tt.want)
			}
		})
	}

	if got := hf.Count(); got != 4 {
		t.Errorf("Count() = %d, want 4", got)
	}
}

func TestSeverityValid(t *testing.T) {
	for _, s := range []analyses.Severity{analyses.SeverityHigh, analyses.SeverityMedium, analyses.SeverityLow} {
		if !s.Valid() {
			t.Errorf("%q.Valid() = false, want true", s)
		}
	}
	if analyses.Severity("critical").Valid() {
		t.Error(`"critical".Valid() = true, want false`)
	}
}

func TestSEIPSItemsAcceptBareStrings(t *testing.T) {
	var hf struct {
		analyses.HumanFactors
		Hazards []analyses.Hazard         `json:"latent_hazards"`
		Recs    []analyses.Recommendation `json:"improvement_opportunities"`
	}
	data := `{
		"team_factors": ["handover gaps", {"factor": "hierarchy", "severity": "high"}],
		"latent_hazards": ["no escalation route"],
		"improvement_opportunities": [{"recommendation": "structured handover", "priority": "medium"}, "audit alarms"]
	}`

	if err := json.Unmarshal([]byte(data), &hf); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	if len(hf.Team) != 2 || hf.Team[0].Factor != "handover gaps" || hf.Team[1].Severity != analyses.SeverityHigh {
		t.Errorf("Team = %+v", hf.Team)
	}
	if len(hf.Hazards) != 1 || hf.Hazards[0].Hazard != "no escalation route" {
		t.Errorf("Hazards = %+v", hf.Hazards)
	}
	if len(hf.Recs) != 2 || hf.Recs[0].Priority != analyses.SeverityMedium || hf.Recs[1].Recommendation != "audit alarms" {
		t.Errorf("Recs = %+v", hf.Recs)
	}
}

func TestTextListUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"strings", `["admitted", "discharged"]`, []string{"admitted", "discharged"}, false},
		{"objects", `[{"name": "Dr A", "role": "registrar"}, {"name": "Nurse B"}]`, []string{"Dr A - registrar", "Nurse B"}, false},
		{"mixed", `["triage", {"time": "09:15", "event": "sepsis missed"}, 3]`, []string{"triage", "09:15 - sepsis missed", "3"}, false},
		{"nested values skipped", `[{"event": "arrest", "staff": ["a", "b"]}, []]`, []string{"arrest"}, false},
		{"lone string", `"single account of events"`, []string{"single account of events"}, false},
		{"null", `null`, nil, false},
		{"number", `42`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got analyses.TextList
			err := json.Unmarshal([]byte(tt.input), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("TextList = %q, want %q", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("TextList[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
