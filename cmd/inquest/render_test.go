package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/inquest/internal/findings"
	"github.com/JaimeStill/inquest/internal/processor"
	"github.com/JaimeStill/inquest/internal/scheduler"
)

func TestPrinterSummaries(t *testing.T) {
	runs := []*scheduler.RunSummary{
		{SourceCode: "uk_pfd", PagesScraped: 2, NewFindings: 5, DuplicateFindings: 1, DurationSeconds: 1.5},
		{SourceCode: "nz_coroner", FailedPages: 1, Errors: []string{"listing page 1 failed"}},
	}

	var buf bytes.Buffer
	if err := (printer{w: &buf}).summaries(runs); err != nil {
		t.Fatalf("summaries: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"uk_pfd", "ok", "failed", "1.5s", "nz_coroner: error: listing page 1 failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrinterStatsJSON(t *testing.T) {
	stats := &processor.Stats{Pass: processor.PassRun, Processed: 3, CostUSD: 0.0125}

	var buf bytes.Buffer
	if err := (printer{w: &buf, json: true}).stats(stats); err != nil {
		t.Fatalf("stats: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got["pass"] != "run" || got["processed"] != float64(3) {
		t.Errorf("decoded = %v", got)
	}
}

func TestPrinterStatsTable(t *testing.T) {
	id := uuid.New()
	stats := &processor.Stats{
		Pass:        processor.PassClassify,
		Processed:   2,
		Errors:      []processor.RecordError{{FindingID: id, Error: "stage failed"}},
		Interrupted: true,
	}

	var buf bytes.Buffer
	if err := (printer{w: &buf}).stats(stats); err != nil {
		t.Fatalf("stats: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"Classify pass", id.String() + ": stage failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(strings.ToLower(out), "interrupted") {
		t.Errorf("output missing interrupted footer:\n%s", out)
	}
}

func TestPrinterFindings(t *testing.T) {
	found := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	list := []findings.Finding{{
		SourceCode:    "uk_pfd",
		ExternalID:    "2024-0101",
		Title:         strings.Repeat("Regulation 28 report ", 10),
		DateOfFinding: &found,
		ContentText:   strings.Repeat("x", 2048),
	}}

	var buf bytes.Buffer
	if err := (printer{w: &buf}).findings(list); err != nil {
		t.Fatalf("findings: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"2024-0101", "2024-03-01"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, list[0].Title) {
		t.Error("title was not trimmed")
	}
}

func TestSourceCodes(t *testing.T) {
	if got := sourceCodes(nil); len(got) != 0 {
		t.Errorf("sourceCodes(nil) = %v", got)
	}
}
