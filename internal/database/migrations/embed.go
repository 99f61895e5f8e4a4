// Package migrations holds the schema migrations. SQL files are embedded;
// Go migrations register themselves with goose on import.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
