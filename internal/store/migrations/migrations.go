// Package migrations embeds the record store schema migrations.
package migrations

import "embed"

// FS holds the golang-migrate files at its root.
//
//go:embed *.sql
var FS embed.FS
