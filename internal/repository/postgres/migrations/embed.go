package migrations

import "embed"

// FS contains the embedded Postgres schema migrations.
//
//go:embed *.sql
var FS embed.FS
