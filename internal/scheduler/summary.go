package scheduler

import (
	"fmt"
	"time"
)

// RunSummary describes one scrape run. Every scraped candidate that was
// not persisted is accounted for in DuplicateFindings, FailedPages, or
// Errors.
type RunSummary struct {
	SourceCode        string    `json:"source_code"`
	StartedAt         time.Time `json:"started_at"`
	CompletedAt       time.Time `json:"completed_at"`
	PagesScraped      int       `json:"pages_scraped"`
	NewFindings       int       `json:"new_findings"`
	DuplicateFindings int       `json:"duplicate_findings"`
	FailedPages       int       `json:"failed_pages"`
	Errors            []string  `json:"errors"`
	Warnings          []string  `json:"warnings"`
	DurationSeconds   float64   `json:"duration_seconds"`
	SuccessRate       float64   `json:"success_rate"`
}

func newSummary(code string, started time.Time) *RunSummary {
	return &RunSummary{
		SourceCode: code,
		StartedAt:  started,
		Errors:     []string{},
		Warnings:   []string{},
	}
}

func (s *RunSummary) errorf(format string, args ...any) {
	s.Errors = append(s.Errors, fmt.Sprintf(format, args...))
}

func (s *RunSummary) warnf(format string, args ...any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

func (s *RunSummary) finish(at time.Time) {
	s.CompletedAt = at
	s.DurationSeconds = at.Sub(s.StartedAt).Seconds()
	if total := s.PagesScraped + s.FailedPages; total > 0 {
		s.SuccessRate = float64(s.PagesScraped) / float64(total)
	}
}

// Outcome labels the run for metrics: ok, partial, or failed.
func (s *RunSummary) Outcome() string {
	switch {
	case s.PagesScraped == 0 && len(s.Errors) > 0:
		return "failed"
	case len(s.Errors) > 0 || s.FailedPages > 0:
		return "partial"
	}
	return "ok"
}
