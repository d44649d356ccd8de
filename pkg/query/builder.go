package query

import (
	"fmt"
	"reflect"
	"strings"
)

// SortField is one ORDER BY term. Field is a view name resolved through
// the ProjectionMap.
type SortField struct {
	Field      string
	Descending bool
}

// ParseSortFields parses "title,-createdAt" style sort strings. A leading
// "-" sorts descending. Empty input yields nil.
func ParseSortFields(s string) []SortField {
	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, desc := strings.CutPrefix(part, "-")
		fields = append(fields, SortField{Field: name, Descending: desc})
	}
	return fields
}

// predicate renders one WHERE term. bind registers a value and returns
// its positional placeholder.
type predicate func(bind func(any) string) string

// Builder assembles parameterized SELECT statements over a ProjectionMap.
// Placeholders are numbered in the order terms were added.
type Builder struct {
	projection  *ProjectionMap
	predicates  []predicate
	order       []SortField
	defaultSort []SortField
}

func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{projection: projection, defaultSort: defaultSort}
}

// Build returns the filtered, ordered SELECT.
func (b *Builder) Build() (string, []any) {
	where, args := b.where()
	return b.selectFrom() + where + b.orderBy(), args
}

// BuildCount returns COUNT(*) over the filtered rows.
func (b *Builder) BuildCount() (string, []any) {
	where, args := b.where()
	return "SELECT COUNT(*) FROM " + b.projection.From() + where, args
}

// BuildPage returns one page of the ordered rows. page is 1-based.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	sql, args := b.Build()
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", sql, pageSize, (page-1)*pageSize), args
}

// BuildFirst returns the first row of the ordered, filtered rows.
func (b *Builder) BuildFirst() (string, []any) {
	sql, args := b.Build()
	return sql + " LIMIT 1", args
}

// BuildSingle selects the row whose idField equals id. Other terms are
// ignored.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	sql := fmt.Sprintf("%s WHERE %s = $1", b.selectFrom(), b.projection.Column(idField))
	return sql, []any{id}
}

// OrderByFields replaces the default sort. Fields the projection does not
// map are dropped.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.order = fields
	return b
}

// WhereEquals matches field = value. Nil values add nothing.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	return b.compare(field, "=", value)
}

// WhereSince matches field >= value. Nil values add nothing.
func (b *Builder) WhereSince(field string, value any) *Builder {
	return b.compare(field, ">=", value)
}

// WhereBefore matches field < value. Nil values add nothing.
func (b *Builder) WhereBefore(field string, value any) *Builder {
	return b.compare(field, "<", value)
}

// WhereContains matches field case-insensitively against a substring.
// Nil or empty values add nothing.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	return b.WhereSearch(value, field)
}

// WhereSearch matches a substring against any of fields. Nil or empty
// search terms add nothing; several fields are OR-ed in parentheses.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" || len(fields) == 0 {
		return b
	}
	pattern := "%" + *search + "%"
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = b.projection.Column(f)
	}

	b.predicates = append(b.predicates, func(bind func(any) string) string {
		terms := make([]string, len(cols))
		for i, col := range cols {
			terms[i] = col + " ILIKE " + bind(pattern)
		}
		if len(terms) == 1 {
			return terms[0]
		}
		return "(" + strings.Join(terms, " OR ") + ")"
	})
	return b
}

func (b *Builder) compare(field, op string, value any) *Builder {
	if isNil(value) {
		return b
	}
	col := b.projection.Column(field)
	b.predicates = append(b.predicates, func(bind func(any) string) string {
		return col + " " + op + " " + bind(value)
	})
	return b
}

func (b *Builder) selectFrom() string {
	return "SELECT " + b.projection.Columns() + " FROM " + b.projection.From()
}

func (b *Builder) where() (string, []any) {
	if len(b.predicates) == 0 {
		return "", nil
	}

	var args []any
	bind := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	terms := make([]string, len(b.predicates))
	for i, p := range b.predicates {
		terms[i] = p(bind)
	}
	return " WHERE " + strings.Join(terms, " AND "), args
}

func (b *Builder) orderBy() string {
	fields := b.order
	if len(fields) == 0 {
		fields = b.defaultSort
	}

	var terms []string
	for _, f := range fields {
		col, ok := b.projection.Lookup(f.Field)
		if !ok {
			continue
		}
		if f.Descending {
			terms = append(terms, col+" DESC")
		} else {
			terms = append(terms, col+" ASC")
		}
	}
	if len(terms) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}
