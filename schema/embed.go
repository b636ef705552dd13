// Package schema embeds the collector's SQL migrations so cmd/migrate
// can apply them without depending on a filesystem layout at runtime.
package schema

import "embed"

//go:embed *.sql
var Migrations embed.FS
