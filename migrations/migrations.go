// Package migrations embeds the ordered goose SQL migrations applied at
// startup when PostgreSQL is configured.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
