// Package migrations embeds the durable schema. Files are applied in
// filename order and tracked in schema_migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
