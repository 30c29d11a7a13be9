// Package migrations embeds the goose SQL migrations so binaries do not depend
// on the working directory. Each goose dialect has its own directory with the
// same version sequence.
package migrations

import (
	"embed"
	"path"
)

// FS holds the migration files under sql/<dialect>/.
//
//go:embed sql/*/*.sql
var FS embed.FS

// Dir returns the directory of FS holding the migrations for a goose dialect.
func Dir(dialect string) string {
	return path.Join("sql", dialect)
}
