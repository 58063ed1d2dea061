package db

import "embed"

// MigrationFS holds the SQL migrations compiled into the binary, so
// cmd/migrate never depends on files being present on disk.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
