// Package query builds parameterized PostgreSQL SELECT statements from a
// mapping of view field names to table columns.
package query

import (
	"strings"
)

// ProjectionMap maps view field names to alias-qualified columns. Columns
// projected after Join belong to the joined table.
type ProjectionMap struct {
	table  string
	alias  string
	owner  string
	joins  []string
	fields map[string]string
	order  []string
}

func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		table:  schema + "." + table + " " + alias,
		alias:  alias,
		owner:  alias,
		fields: map[string]string{},
	}
}

// Project selects column under the view name field.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	col := p.owner + "." + column
	p.fields[field] = col
	p.order = append(p.order, col)
	return p
}

// Join appends "kind schema.table alias ON on" to the FROM clause.
func (p *ProjectionMap) Join(schema, table, alias, kind, on string) *ProjectionMap {
	p.joins = append(p.joins, kind+" "+schema+"."+table+" "+alias+" ON "+on)
	p.owner = alias
	return p
}

func (p *ProjectionMap) Alias() string { return p.alias }

// Table is the root table as "schema.table alias".
func (p *ProjectionMap) Table() string { return p.table }

// From is Table followed by every join.
func (p *ProjectionMap) From() string {
	return strings.Join(append([]string{p.table}, p.joins...), " ")
}

// Column resolves field, passing unmapped names through unchanged.
func (p *ProjectionMap) Column(field string) string {
	if col, ok := p.fields[field]; ok {
		return col
	}
	return field
}

func (p *ProjectionMap) Lookup(field string) (string, bool) {
	col, ok := p.fields[field]
	return col, ok
}

// Columns is the select list in projection order.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.order, ", ")
}
