// Package migrations embeds the goose SQL migrations, one directory per dialect.
package migrations

import "embed"

const (
	DirSQLite   = "sqlite"
	DirPostgres = "postgres"
)

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
