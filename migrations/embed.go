package migrations

import "embed"

// FS embeds the SQL migrations so the server can bring up its own schema
//
//go:embed *.sql
var FS embed.FS
