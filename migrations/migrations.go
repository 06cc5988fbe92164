// Package migrations embeds the PostgreSQL schema migrations in
// golang-migrate layout.
package migrations

import "embed"

// FS holds the NNNNNN_name.{up,down}.sql files.
//
//go:embed *.sql
var FS embed.FS
