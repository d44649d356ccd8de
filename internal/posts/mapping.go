package posts

import (
	"net/url"

	"github.com/JaimeStill/inquest/pkg/query"
	"github.com/JaimeStill/inquest/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "posts", "p").
	Project("id", "ID").
	Project("analysis_id", "AnalysisID").
	Project("finding_id", "FindingID").
	Project("slug", "Slug").
	Project("title", "Title").
	Project("content", "Content").
	Project("excerpt", "Excerpt").
	Project("key_learnings", "KeyLearnings").
	Project("tags", "Tags").
	Project("status", "Status").
	Project("reviewer", "Reviewer").
	Project("review_notes", "ReviewNotes").
	Project("reviewed_at", "ReviewedAt").
	Project("published_at", "PublishedAt").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Projection exposes the post column mapping to the record store.
func Projection() *query.ProjectionMap {
	return projection
}

// Filters contains optional filtering criteria for post queries.
type Filters struct {
	Status *Status `json:"status,omitempty"`
}

func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.WhereEquals("Status", f.Status)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Unknown status values are ignored.
func FiltersFromQuery(values url.Values) Filters {
	return Filters{Status: query.Param(values, "status", ParseStatus)}
}

// Scan reads a row selected with Projection columns.
func Scan(s repository.Scanner) (Post, error) {
	var p Post
	err := s.Scan(
		&p.ID,
		&p.AnalysisID,
		&p.FindingID,
		&p.Slug,
		&p.Title,
		&p.Content,
		&p.Excerpt,
		repository.ScanJSON(&p.KeyLearnings),
		repository.ScanJSON(&p.Tags),
		&p.Status,
		&p.Reviewer,
		&p.ReviewNotes,
		&p.ReviewedAt,
		&p.PublishedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if p.KeyLearnings == nil {
		p.KeyLearnings = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, err
}
