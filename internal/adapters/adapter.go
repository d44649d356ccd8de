// Package adapters turns fetched source pages into finding candidates.
// Adapters are pure transformations over already-fetched documents; every
// network call stays in the fetch client so politeness policy lives in
// one place.
package adapters

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/inquest/internal/fetch"
	"github.com/JaimeStill/inquest/internal/findings"
	"github.com/JaimeStill/inquest/internal/sources"
)

// Adapter parses one source's listing and detail pages.
type Adapter interface {
	// Name is the registry code of the adapter implementation.
	Name() string
	Version() string
	Settings() Settings

	// ListingURL returns the URL of the given 1-indexed listing page.
	ListingURL(page int) string

	// ParseListing extracts relevant candidates and the next listing page
	// URL, empty when the listing is exhausted.
	ParseListing(doc *fetch.Document, pageURL string) ([]Candidate, string, error)

	// ParseDetail completes a candidate from its detail page.
	ParseDetail(doc *fetch.Document, c Candidate) (Candidate, error)
}

// Factory builds an adapter for a source.
type Factory func(src sources.Source) (Adapter, error)

// Candidate is a finding as scraped, before it is offered to the store.
type Candidate struct {
	ExternalID    string
	Title         string
	SourceURL     string
	Summary       string
	DeceasedName  string
	CoronerName   string
	DateOfDeath   *time.Time
	DateOfFinding *time.Time
	PDFURL        string
	PDFText       string
	ContentText   string
	ContentHTML   string
	Categories    []string
	Metadata      map[string]any
}

// Command converts the candidate into a create command for sourceID.
func (c Candidate) Command(sourceID uuid.UUID) findings.CreateCommand {
	return findings.CreateCommand{
		SourceID:      sourceID,
		ExternalID:    c.ExternalID,
		Title:         c.Title,
		DeceasedName:  c.DeceasedName,
		CoronerName:   c.CoronerName,
		DateOfDeath:   c.DateOfDeath,
		DateOfFinding: c.DateOfFinding,
		SourceURL:     c.SourceURL,
		PDFURL:        c.PDFURL,
		PDFText:       c.PDFText,
		ContentText:   c.ContentText,
		ContentHTML:   c.ContentHTML,
		Categories:    slices.Clone(c.Categories),
		Metadata:      maps.Clone(c.Metadata),
	}
}

func (c Candidate) clone() Candidate {
	c.Categories = slices.Clone(c.Categories)
	c.Metadata = maps.Clone(c.Metadata)
	if c.Metadata == nil {
		c.Metadata = make(map[string]any)
	}
	return c
}
