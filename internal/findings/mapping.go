package findings

import (
	"net/url"
	"strconv"
	"time"

	"github.com/JaimeStill/inquest/pkg/query"
	"github.com/JaimeStill/inquest/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "findings", "f").
	Project("id", "ID").
	Project("source_id", "SourceID").
	Project("external_id", "ExternalID").
	Project("title", "Title").
	Project("deceased_name", "DeceasedName").
	Project("coroner_name", "CoronerName").
	Project("date_of_death", "DateOfDeath").
	Project("date_of_finding", "DateOfFinding").
	Project("source_url", "SourceURL").
	Project("pdf_url", "PDFURL").
	Project("pdf_text", "PDFText").
	Project("content_text", "ContentText").
	Project("content_html", "ContentHTML").
	Project("categories", "Categories").
	Project("is_healthcare", "IsHealthcare").
	Project("healthcare_confidence", "HealthcareConfidence").
	Project("metadata", "Metadata").
	Project("status", "Status").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt").
	Join("public", "sources", "s", "JOIN", "s.id = f.source_id").
	Project("code", "SourceCode")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Projection exposes the finding column mapping to the record store.
func Projection() *query.ProjectionMap {
	return projection
}

// Filters contains optional filtering criteria for finding queries.
type Filters struct {
	Status       *Status `json:"status,omitempty"`
	SourceCode   *string `json:"source_code,omitempty"`
	IsHealthcare *bool   `json:"is_healthcare,omitempty"`

	// FoundAfter and FoundBefore bound DateOfFinding as [after, before).
	FoundAfter  *time.Time `json:"found_after,omitempty"`
	FoundBefore *time.Time `json:"found_before,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("SourceCode", f.SourceCode).
		WhereEquals("IsHealthcare", f.IsHealthcare).
		WhereSince("DateOfFinding", f.FoundAfter).
		WhereBefore("DateOfFinding", f.FoundBefore)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Unknown status values and unparseable dates are ignored.
func FiltersFromQuery(values url.Values) Filters {
	return Filters{
		Status:       query.Param(values, "status", ParseStatus),
		SourceCode:   query.Param(values, "source_code", query.Text),
		IsHealthcare: query.Param(values, "is_healthcare", strconv.ParseBool),
		FoundAfter:   query.Param(values, "found_after", query.Date),
		FoundBefore:  query.Param(values, "found_before", query.Date),
	}
}

// Scan reads a row selected with Projection columns.
func Scan(s repository.Scanner) (Finding, error) {
	var f Finding
	err := s.Scan(
		&f.ID,
		&f.SourceID,
		&f.ExternalID,
		&f.Title,
		&f.DeceasedName,
		&f.CoronerName,
		&f.DateOfDeath,
		&f.DateOfFinding,
		&f.SourceURL,
		&f.PDFURL,
		&f.PDFText,
		&f.ContentText,
		&f.ContentHTML,
		repository.ScanJSON(&f.Categories),
		&f.IsHealthcare,
		&f.HealthcareConfidence,
		repository.ScanJSON(&f.Metadata),
		&f.Status,
		&f.CreatedAt,
		&f.UpdatedAt,
		&f.SourceCode,
	)
	if f.Categories == nil {
		f.Categories = []string{}
	}
	if f.Metadata == nil {
		f.Metadata = map[string]any{}
	}
	return f, err
}
