package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/JaimeStill/inquest/internal/findings"
	"github.com/JaimeStill/inquest/internal/processor"
	"github.com/JaimeStill/inquest/internal/scheduler"
	"github.com/JaimeStill/inquest/internal/sources"
)

const titleWidth = 60

// printer writes command results as tables, or as JSON with --json.
type printer struct {
	w    io.Writer
	json bool
}

func newPrinter(cmd *cobra.Command, opts *options) printer {
	return printer{w: cmd.OutOrStdout(), json: opts.jsonOutput}
}

func (p printer) encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p printer) newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.w)
	t.SetStyle(table.StyleLight)
	if title != "" {
		t.SetTitle(title)
	}
	return t
}

func (p printer) summaries(runs []*scheduler.RunSummary) error {
	if p.json {
		return p.encode(runs)
	}

	t := p.newTable("Scrape runs")
	t.AppendHeader(table.Row{"Source", "Outcome", "Pages", "Failed", "New", "Duplicates", "Errors", "Duration"})
	var created, dupes int
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.SourceCode, r.Outcome(), r.PagesScraped, r.FailedPages,
			r.NewFindings, r.DuplicateFindings, len(r.Errors), seconds(r.DurationSeconds),
		})
		created += r.NewFindings
		dupes += r.DuplicateFindings
	}
	t.AppendFooter(table.Row{"Total", "", "", "", created, dupes, "", ""})
	t.Render()

	for _, r := range runs {
		for _, msg := range r.Errors {
			fmt.Fprintf(p.w, "%s: error: %s\n", r.SourceCode, msg)
		}
		for _, msg := range r.Warnings {
			fmt.Fprintf(p.w, "%s: warning: %s\n", r.SourceCode, msg)
		}
	}
	return nil
}

func (p printer) stats(s *processor.Stats) error {
	if p.json {
		return p.encode(s)
	}

	t := p.newTable(strings.ToUpper(s.Pass[:1]) + s.Pass[1:] + " pass")
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Processed", s.Processed},
		{"Classified", s.Classified},
		{"Healthcare", s.Healthcare},
		{"Not healthcare", s.NonHealthcare},
		{"Analyses", s.AnalysesCreated},
		{"Posts", s.PostsCreated},
		{"Tokens in/out", fmt.Sprintf("%d / %d", s.TokensIn, s.TokensOut)},
		{"Cost (USD)", fmt.Sprintf("%.4f", s.CostUSD)},
		{"Errors", len(s.Errors)},
		{"Success rate", fmt.Sprintf("%.0f%%", s.SuccessRate*100)},
		{"Duration", seconds(s.DurationSeconds)},
	})
	if s.Interrupted {
		t.AppendFooter(table.Row{"Interrupted", "yes"})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	t.Render()

	for _, e := range s.Errors {
		fmt.Fprintf(p.w, "%s: %s\n", e.FindingID, e.Error)
	}
	return nil
}

func (p printer) sources(list []sources.Source) error {
	if p.json {
		return p.encode(list)
	}

	t := p.newTable("")
	t.AppendHeader(table.Row{"Code", "Name", "Country", "Adapter", "Schedule", "Active", "Last run"})
	for _, s := range list {
		last := "never"
		if s.LastRunAt != nil {
			last = s.LastRunAt.Format(time.DateTime)
		}
		t.AppendRow(table.Row{s.Code, s.Name, s.Country, s.AdapterCode(), s.Schedule, s.Active, last})
	}
	t.Render()
	return nil
}

func (p printer) jobs(list []scheduler.Job) error {
	if p.json {
		return p.encode(list)
	}

	t := p.newTable("")
	t.AppendHeader(table.Row{"Code", "Kind", "Schedule", "Next run", "Running"})
	for _, j := range list {
		next := "-"
		if j.NextRun != nil {
			next = j.NextRun.Format(time.DateTime)
		}
		t.AppendRow(table.Row{j.Code, j.Kind, j.Schedule, next, j.Running})
	}
	t.Render()
	return nil
}

func (p printer) findings(list []findings.Finding) error {
	if p.json {
		return p.encode(list)
	}

	t := p.newTable("Captured findings")
	t.AppendHeader(table.Row{"Source", "External ID", "Title", "Found", "Content", "PDF"})
	for _, f := range list {
		found := "-"
		if f.DateOfFinding != nil {
			found = f.DateOfFinding.Format(time.DateOnly)
		}
		t.AppendRow(table.Row{
			f.SourceCode,
			f.ExternalID,
			text.Trim(f.Title, titleWidth),
			found,
			units.BytesSize(float64(len(f.ContentText))),
			units.BytesSize(float64(len(f.PDFText))),
		})
	}
	t.Render()
	return nil
}

func seconds(s float64) string {
	return time.Duration(s * float64(time.Second)).Round(time.Millisecond).String()
}
