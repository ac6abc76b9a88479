// migrations/migrations.go
package migrations

import "embed"

// FS embeds the SQL migrations so deployments never depend on a working
// directory layout.
//
//go:embed *.sql
var FS embed.FS
