// Package migrations embeds the goose SQL migrations. The same files run on
// SQLite and Postgres, so they stick to portable DDL.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
