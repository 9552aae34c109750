// Package migrations compiles the journal schema migrations into the
// binary, so a deployment needs no SQL files on disk. Importing the package
// for side effects hands the embedded filesystem to the database package:
//
//	import _ "github.com/nerrad567/gray-logic-connect/migrations"
package migrations

import (
	"embed"

	"github.com/nerrad567/gray-logic-connect/internal/infrastructure/database"
)

//go:embed *.sql
var files embed.FS

func init() {
	database.MigrationsFS = files
	database.MigrationsDir = "."
}
