// Package migrations embeds the SQL schema for the relational collection backends.
package migrations

import "embed"

//go:embed postgres/*.sql mysql/*.sql
var FS embed.FS
