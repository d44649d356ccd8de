package prompts

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/inquest/pkg/query"
	"github.com/JaimeStill/inquest/pkg/repository"
)

// Columns follow the Prompt field order so scan can read them positionally.
var projection = query.
	NewProjectionMap("public", "prompts", "p").
	Project("id", "ID").
	Project("name", "Name").
	Project("stage", "Stage").
	Project("instructions", "Instructions").
	Project("description", "Description").
	Project("active", "Active")

var byName = query.SortField{Field: "Name"}

// Filters narrows a prompt listing. Stage and Active match exactly; Name
// and Mentions are case-insensitive substring matches, Mentions against
// the instruction text.
type Filters struct {
	Stage    *Stage  `json:"stage,omitempty"`
	Name     *string `json:"name,omitempty"`
	Mentions *string `json:"mentions,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Stage", f.Stage).
		WhereContains("Name", f.Name).
		WhereContains("Instructions", f.Mentions).
		WhereEquals("Active", f.Active)
}

// FiltersFromQuery drops unknown stages and malformed booleans.
func FiltersFromQuery(values url.Values) Filters {
	return Filters{
		Stage:    query.Param(values, "stage", ParseStage),
		Name:     query.Param(values, "name", query.Text),
		Mentions: query.Param(values, "mentions", query.Text),
		Active:   query.Param(values, "active", strconv.ParseBool),
	}
}

func scan(s repository.Scanner) (p Prompt, err error) {
	err = s.Scan(&p.ID, &p.Name, &p.Stage, &p.Instructions, &p.Description, &p.Active)
	return p, err
}
