// Package migrations embeds the schema files for every database weekgrid
// opens: the local cache (sqlite, postgres) and the sheet proxy (proxy).
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql proxy/*.sql
var FS embed.FS
