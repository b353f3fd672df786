package postgres

import (
	"fmt"
	"io/fs"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/shrimpsizemoose/betyg/internal/models"
	"github.com/shrimpsizemoose/betyg/internal/store"
)

type PostgresStore struct {
	store.BaseStore
}

func NewPostgresStore(dsn string, migrations fs.FS) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PostgresStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			return sqlx.Rebind(sqlx.DOLLAR, query)
		},
	}}

	if err := s.ApplyMigrations(migrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return s, nil
}

func (s *PostgresStore) ApplyMigrations(migrations fs.FS) error {
	return s.BaseStore.ApplyMigrations(migrations, nil)
}

// SeedSubjects uses a single multi-row insert, postgres handles it in one round trip.
func (s *PostgresStore) SeedSubjects(subjects []models.Subject) error {
	if len(subjects) == 0 {
		return nil
	}
	_, err := s.DB.NamedExec(`
		INSERT INTO subjects (id, name, coefficient, level, track)
		VALUES (:id, :name, :coefficient, :level, :track)
		ON CONFLICT (id) DO NOTHING
	`, subjects)
	if err != nil {
		return fmt.Errorf("failed to seed subjects: %w", err)
	}
	return nil
}
