package app

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/shrimpsizemoose/betyg/internal/store"
	"github.com/shrimpsizemoose/betyg/internal/store/postgres"
	"github.com/shrimpsizemoose/betyg/internal/store/sqlite"
	"github.com/shrimpsizemoose/betyg/migrations"
)

// NewStore opens the database named by dsn. Migrations come from dir when it
// is set, otherwise the embedded set is used.
func NewStore(dsn, migrationsDir string) (store.GradeStore, error) {
	var files fs.FS = migrations.Files
	if migrationsDir != "" {
		files = os.DirFS(migrationsDir)
	}

	dbType := store.DetectType(dsn)
	switch dbType {
	case store.DBTypePostgres:
		return postgres.NewPostgresStore(dsn, files)
	case store.DBTypeSQLite:
		return sqlite.NewSQLiteStore(&store.DBConfig{DSN: dsn, Type: dbType}, files)
	default:
		return nil, fmt.Errorf("unable to determine database type from DSN: %s", dsn)
	}
}
