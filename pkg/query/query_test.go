package query_test

import (
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/JaimeStill/inquest/pkg/query"
)

func testProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "findings", "f").
		Project("id", "id").
		Project("title", "title").
		Project("created_at", "createdAt")
}

func ptr(s string) *string { return &s }

func TestProjectionMapShape(t *testing.T) {
	p := testProjection()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"Table", p.Table(), "public.findings f"},
		{"Alias", p.Alias(), "f"},
		{"From", p.From(), "public.findings f"},
		{"Columns", p.Columns(), "f.id, f.title, f.created_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s() = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestProjectionMapColumnLookup(t *testing.T) {
	p := testProjection()

	tests := []struct {
		name     string
		viewName string
		want     string
	}{
		{"mapped field", "title", "f.title"},
		{"mapped camel", "createdAt", "f.created_at"},
		{"unmapped passthrough", "unknown", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Column(tt.viewName); got != tt.want {
				t.Errorf("Column(%q) = %q, want %q", tt.viewName, got, tt.want)
			}
		})
	}
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []query.SortField
	}{
		{
			name:  "empty string",
			input: "",
			want:  nil,
		},
		{
			name:  "single ascending",
			input: "name",
			want:  []query.SortField{{Field: "name", Descending: false}},
		},
		{
			name:  "single descending",
			input: "-createdAt",
			want:  []query.SortField{{Field: "createdAt", Descending: true}},
		},
		{
			name:  "multiple mixed",
			input: "name,-createdAt",
			want: []query.SortField{
				{Field: "name", Descending: false},
				{Field: "createdAt", Descending: true},
			},
		},
		{
			name:  "with spaces",
			input: " name , -createdAt ",
			want: []query.SortField{
				{Field: "name", Descending: false},
				{Field: "createdAt", Descending: true},
			},
		},
		{
			name:  "empty parts skipped",
			input: "name,,createdAt",
			want: []query.SortField{
				{Field: "name", Descending: false},
				{Field: "createdAt", Descending: false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := query.ParseSortFields(tt.input)
			if tt.want == nil {
				if got != nil {
					t.Errorf("ParseSortFields(%q) = %v, want nil", tt.input, got)
				}
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseSortFields(%q) length = %d, want %d", tt.input, len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseSortFields(%q)[%d] = %v, want %v", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuilderBuild(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	sql, args := b.Build()

	wantSQL := "SELECT f.id, f.title, f.created_at FROM public.findings f"
	if sql != wantSQL {
		t.Errorf("Build() sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 0 {
		t.Errorf("Build() args = %v, want empty", args)
	}
}

func TestBuilderBuildCount(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	sql, args := b.BuildCount()

	wantSQL := "SELECT COUNT(*) FROM public.findings f"
	if sql != wantSQL {
		t.Errorf("BuildCount() sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 0 {
		t.Errorf("BuildCount() args = %v, want empty", args)
	}
}

func TestBuilderBuildPage(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p, query.SortField{Field: "createdAt", Descending: true})
	sql, args := b.BuildPage(2, 10)

	wantSQL := "SELECT f.id, f.title, f.created_at FROM public.findings f ORDER BY f.created_at DESC LIMIT 10 OFFSET 10"
	if sql != wantSQL {
		t.Errorf("BuildPage() sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 0 {
		t.Errorf("BuildPage() args = %v, want empty", args)
	}
}

func TestBuilderBuildSingle(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	sql, args := b.BuildSingle("id", "abc-123")

	wantSQL := "SELECT f.id, f.title, f.created_at FROM public.findings f WHERE f.id = $1"
	if sql != wantSQL {
		t.Errorf("BuildSingle() sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 1 || args[0] != "abc-123" {
		t.Errorf("BuildSingle() args = %v, want [abc-123]", args)
	}
}

func TestBuilderBuildFirst(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p, query.SortField{Field: "createdAt", Descending: true})
	b.WhereEquals("title", "Regulation 28 report")
	sql, args := b.BuildFirst()

	wantSQL := "SELECT f.id, f.title, f.created_at FROM public.findings f WHERE f.title = $1 ORDER BY f.created_at DESC LIMIT 1"
	if sql != wantSQL {
		t.Errorf("BuildFirst() sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 1 || args[0] != "Regulation 28 report" {
		t.Errorf("BuildFirst() args = %v, want [Regulation 28 report]", args)
	}
}

func TestBuilderWhereEquals(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	b.WhereEquals("title", "Regulation 28 report")
	sql, args := b.Build()

	wantSQL := "SELECT f.id, f.title, f.created_at FROM public.findings f WHERE f.title = $1"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 1 || args[0] != "Regulation 28 report" {
		t.Errorf("args = %v, want [Regulation 28 report]", args)
	}
}

func TestBuilderWhereEqualsNilSkipped(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	b.WhereEquals("title", nil)
	sql, args := b.Build()

	wantSQL := "SELECT f.id, f.title, f.created_at FROM public.findings f"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want empty", args)
	}
}

func TestBuilderWhereContains(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	b.WhereContains("title", ptr("test"))
	sql, args := b.Build()

	wantSQL := "SELECT f.id, f.title, f.created_at FROM public.findings f WHERE f.title ILIKE $1"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 1 || args[0] != "%test%" {
		t.Errorf("args = %v, want [%%test%%]", args)
	}
}

func TestBuilderWhereContainsNilSkipped(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	b.WhereContains("title", nil)
	_, args := b.Build()

	if len(args) != 0 {
		t.Errorf("args = %v, want empty", args)
	}
}

func TestBuilderWhereContainsEmptySkipped(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	b.WhereContains("title", ptr(""))
	_, args := b.Build()

	if len(args) != 0 {
		t.Errorf("args = %v, want empty", args)
	}
}

func TestBuilderWhereSearch(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	b.WhereSearch(ptr("test"), "title", "id")
	sql, args := b.Build()

	wantSQL := "SELECT f.id, f.title, f.created_at FROM public.findings f WHERE (f.title ILIKE $1 OR f.id ILIKE $2)"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 2 || args[0] != "%test%" || args[1] != "%test%" {
		t.Errorf("args = %v, want [%%test%% %%test%%]", args)
	}
}

func TestBuilderWhereSearchNilSkipped(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	b.WhereSearch(nil, "title")
	_, args := b.Build()

	if len(args) != 0 {
		t.Errorf("args = %v, want empty", args)
	}
}

func TestBuilderMultipleConditions(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	b.WhereEquals("title", "Regulation 28 report")
	b.WhereContains("id", ptr("abc"))
	sql, args := b.Build()

	wantSQL := "SELECT f.id, f.title, f.created_at FROM public.findings f WHERE f.title = $1 AND f.id ILIKE $2"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 2 {
		t.Errorf("args length = %d, want 2", len(args))
	}
	if args[0] != "Regulation 28 report" {
		t.Errorf("args[0] = %v, want Regulation 28 report", args[0])
	}
	if args[1] != "%abc%" {
		t.Errorf("args[1] = %v, want %%abc%%", args[1])
	}
}

func TestBuilderOrderByFields(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p, query.SortField{Field: "id", Descending: false})
	b.OrderByFields([]query.SortField{
		{Field: "createdAt", Descending: true},
		{Field: "title", Descending: false},
	})
	sql, _ := b.Build()

	wantSQL := "SELECT f.id, f.title, f.created_at FROM public.findings f ORDER BY f.created_at DESC, f.title ASC"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
}

func TestBuilderDefaultSort(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p, query.SortField{Field: "createdAt", Descending: true})
	sql, _ := b.Build()

	wantSQL := "SELECT f.id, f.title, f.created_at FROM public.findings f ORDER BY f.created_at DESC"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
}

func TestBuilderBuildCountWithConditions(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	b.WhereEquals("title", "Regulation 28 report")
	sql, args := b.BuildCount()

	wantSQL := "SELECT COUNT(*) FROM public.findings f WHERE f.title = $1"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 1 || args[0] != "Regulation 28 report" {
		t.Errorf("args = %v, want [Regulation 28 report]", args)
	}
}

func TestBuilderBuildPageWithConditions(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p, query.SortField{Field: "id"})
	b.WhereContains("title", ptr("report"))
	sql, args := b.BuildPage(3, 25)

	wantSQL := "SELECT f.id, f.title, f.created_at FROM public.findings f WHERE f.title ILIKE $1 ORDER BY f.id ASC LIMIT 25 OFFSET 50"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 1 || args[0] != "%report%" {
		t.Errorf("args = %v, want [%%report%%]", args)
	}
}

func TestProjectionMapJoin(t *testing.T) {
	p := query.NewProjectionMap("public", "findings", "f").
		Project("id", "id").
		Project("title", "title").
		Join("public", "sources", "s", "JOIN", "s.id = f.source_id").
		Project("code", "sourceCode")

	wantFrom := "public.findings f JOIN public.sources s ON s.id = f.source_id"
	if got := p.From(); got != wantFrom {
		t.Errorf("From() = %q, want %q", got, wantFrom)
	}
	if got := p.Table(); got != "public.findings f" {
		t.Errorf("Table() = %q, want %q", got, "public.findings f")
	}
	if got := p.Column("sourceCode"); got != "s.code" {
		t.Errorf("Column(sourceCode) = %q, want %q", got, "s.code")
	}

	b := query.NewBuilder(p)
	b.WhereEquals("sourceCode", "uk_pfd")
	sql, args := b.Build()

	wantSQL := "SELECT f.id, f.title, s.code FROM " + wantFrom + " WHERE s.code = $1"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 1 || args[0] != "uk_pfd" {
		t.Errorf("args = %v, want [uk_pfd]", args)
	}
}

func TestBuilderDateRange(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		since    *time.Time
		before   *time.Time
		wantSQL  string
		wantArgs int
	}{
		{"both bounds", &since, &before, " WHERE f.created_at >= $1 AND f.created_at < $2", 2},
		{"lower only", &since, nil, " WHERE f.created_at >= $1", 1},
		{"upper only", nil, &before, " WHERE f.created_at < $1", 1},
		{"unbounded", nil, nil, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := query.NewBuilder(testProjection())
			b.WhereSince("createdAt", tt.since).WhereBefore("createdAt", tt.before)
			sql, args := b.Build()

			wantSQL := "SELECT f.id, f.title, f.created_at FROM public.findings f" + tt.wantSQL
			if sql != wantSQL {
				t.Errorf("sql = %q, want %q", sql, wantSQL)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("args = %v, want %d entries", args, tt.wantArgs)
			}
		})
	}
}

func TestBuilderUnknownSortFieldsDropped(t *testing.T) {
	b := query.NewBuilder(testProjection())
	b.OrderByFields(query.ParseSortFields("title; DROP TABLE findings,-createdAt"))
	sql, _ := b.Build()

	wantSQL := "SELECT f.id, f.title, f.created_at FROM public.findings f ORDER BY f.created_at DESC"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
}

func TestProjectionMapLookup(t *testing.T) {
	p := testProjection()
	if col, ok := p.Lookup("createdAt"); !ok || col != "f.created_at" {
		t.Errorf("Lookup(createdAt) = %q, %v, want f.created_at, true", col, ok)
	}
	if _, ok := p.Lookup("unknown"); ok {
		t.Errorf("Lookup(unknown) ok = true, want false")
	}
}

func TestParam(t *testing.T) {
	values := url.Values{
		"active": {"true"},
		"pages":  {"many"},
		"code":   {"uk_pfd"},
		"after":  {"2024-03-01"},
		"empty":  {""},
	}

	if got := query.Param(values, "active", strconv.ParseBool); got == nil || !*got {
		t.Errorf("active = %v, want true", got)
	}
	if got := query.Param(values, "pages", strconv.Atoi); got != nil {
		t.Errorf("pages = %v, want nil for unparseable value", *got)
	}
	if got := query.Param(values, "code", query.Text); got == nil || *got != "uk_pfd" {
		t.Errorf("code = %v, want uk_pfd", got)
	}
	if got := query.Param(values, "empty", query.Text); got != nil {
		t.Errorf("empty = %q, want nil", *got)
	}
	if got := query.Param(values, "missing", query.Text); got != nil {
		t.Errorf("missing = %q, want nil", *got)
	}

	got := query.Param(values, "after", query.Date)
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if got == nil || !got.Equal(want) {
		t.Errorf("after = %v, want %v", got, want)
	}
}
