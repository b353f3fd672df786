package store

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/betyg/internal/models"
)

type GradeStore interface {
	Close() error
	ApplyMigrations(fsys fs.FS) error

	SeedSubjects(subjects []models.Subject) error
	ListSubjects(level, track string) ([]models.Subject, error)
	GetSubject(id int) (*models.Subject, error)

	CreateStudent(student *models.Student) error
	GetStudent(id string) (*models.Student, error)
	UpdateStudent(student *models.Student) error
	DeleteStudent(id string) (bool, error)
	ListStudents(level, track string) ([]models.Student, error)
	ListAllStudents() ([]models.Student, error)

	UpsertGrade(entry models.GradeEntry) error
	UpsertGrades(entries []models.GradeEntry) error
	GetGrade(student string, subjectID int, term models.Term) (*models.GradeEntry, error)
	ListStudentGrades(student string) ([]models.GradeEntry, error)
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations in name order, translating dialect if needed
func (s *BaseStore) ApplyMigrations(fsys fs.FS, translateSQL func(string) string) error {
	files, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := fs.ReadFile(fsys, file.Name())
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		logger.Debug.Printf("Applying migration: %s", file.Name())
		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

// SeedSubjects inserts the catalog subjects once. Existing ids are left alone.
func (s *BaseStore) SeedSubjects(subjects []models.Subject) error {
	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin seeding: %w", err)
	}
	defer tx.Rollback()

	for _, subject := range subjects {
		_, err := tx.NamedExec(`
			INSERT INTO subjects (id, name, coefficient, level, track)
			VALUES (:id, :name, :coefficient, :level, :track)
			ON CONFLICT (id) DO NOTHING
		`, subject)
		if err != nil {
			return fmt.Errorf("failed to seed subject %d: %w", subject.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seeding: %w", err)
	}
	return nil
}

func (s *BaseStore) ListSubjects(level, track string) ([]models.Subject, error) {
	subjects := []models.Subject{}
	query := s.Converter(`
		SELECT id, name, coefficient, level, track
		FROM subjects
		WHERE level = ? AND track = ?
		ORDER BY id
	`)
	if err := s.DB.Select(&subjects, query, level, track); err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return subjects, nil
}

func (s *BaseStore) GetSubject(id int) (*models.Subject, error) {
	var subject models.Subject
	query := s.Converter(`
		SELECT id, name, coefficient, level, track
		FROM subjects
		WHERE id = ?
	`)
	err := s.DB.Get(&subject, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	return &subject, nil
}

const studentColumns = `id, last_name, first_name, birth_date, sex, level, track`

func (s *BaseStore) CreateStudent(student *models.Student) error {
	student.Normalize()
	if err := student.Validate(); err != nil {
		return err
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var taken int
	err = tx.Get(&taken, s.Converter(`SELECT COUNT(*) FROM students WHERE id = ?`), student.ID)
	if err != nil {
		return fmt.Errorf("failed to check student id: %w", err)
	}
	if taken > 0 {
		return models.Invalid("id", "student %s already exists", student.ID)
	}

	_, err = tx.NamedExec(`
		INSERT INTO students (`+studentColumns+`)
		VALUES (:id, :last_name, :first_name, :birth_date, :sex, :level, :track)
	`, student)
	if err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit student: %w", err)
	}
	return nil
}

func (s *BaseStore) GetStudent(id string) (*models.Student, error) {
	var student models.Student
	query := s.Converter(`SELECT ` + studentColumns + ` FROM students WHERE id = ?`)
	err := s.DB.Get(&student, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &student, nil
}

func (s *BaseStore) UpdateStudent(student *models.Student) error {
	student.Normalize()
	if err := student.Validate(); err != nil {
		return err
	}

	res, err := s.DB.NamedExec(`
		UPDATE students SET
		last_name = :last_name,
		first_name = :first_name,
		birth_date = :birth_date,
		sex = :sex,
		level = :level,
		track = :track
		WHERE id = :id
	`, student)
	if err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}
	if n == 0 {
		return models.NewNotFoundError("student", student.ID)
	}
	return nil
}

// DeleteStudent removes the student and every grade recorded for them.
func (s *BaseStore) DeleteStudent(id string) (bool, error) {
	tx, err := s.DB.Beginx()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(s.Converter(`DELETE FROM grades WHERE student_id = ?`), id); err != nil {
		return false, fmt.Errorf("failed to delete grades: %w", err)
	}
	res, err := tx.Exec(s.Converter(`DELETE FROM students WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("failed to delete student: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete student: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit delete: %w", err)
	}
	return n > 0, nil
}

func (s *BaseStore) ListStudents(level, track string) ([]models.Student, error) {
	students := []models.Student{}
	query := s.Converter(`
		SELECT ` + studentColumns + `
		FROM students
		WHERE level = ? AND track = ?
		ORDER BY last_name, first_name, id
	`)
	if err := s.DB.Select(&students, query, level, track); err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

func (s *BaseStore) ListAllStudents() ([]models.Student, error) {
	students := []models.Student{}
	err := s.DB.Select(&students, `
		SELECT `+studentColumns+`
		FROM students
		ORDER BY last_name, first_name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

const upsertGradeQuery = `
	INSERT INTO grades (student_id, subject_id, term, cc_score, exam_score)
	VALUES (:student_id, :subject_id, :term, :cc_score, :exam_score)
	ON CONFLICT (student_id, subject_id, term) DO UPDATE SET
	cc_score = excluded.cc_score,
	exam_score = excluded.exam_score
`

// UpsertGrade replaces whatever was stored for (student, subject, term).
func (s *BaseStore) UpsertGrade(entry models.GradeEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if _, err := s.DB.NamedExec(upsertGradeQuery, entry); err != nil {
		return fmt.Errorf("failed to upsert grade: %w", err)
	}
	return nil
}

// UpsertGrades writes all entries or none of them.
func (s *BaseStore) UpsertGrades(entries []models.GradeEntry) error {
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		if _, err := tx.NamedExec(upsertGradeQuery, e); err != nil {
			return fmt.Errorf("failed to upsert grade %s/%d/%d: %w", e.Student, e.SubjectID, e.Term, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit grades: %w", err)
	}
	return nil
}

func (s *BaseStore) GetGrade(student string, subjectID int, term models.Term) (*models.GradeEntry, error) {
	var entry models.GradeEntry
	query := s.Converter(`
		SELECT student_id, subject_id, term, cc_score, exam_score
		FROM grades
		WHERE student_id = ?
		AND subject_id = ?
		AND term = ?
	`)
	err := s.DB.Get(&entry, query, student, subjectID, int(term))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get grade: %w", err)
	}
	return &entry, nil
}

func (s *BaseStore) ListStudentGrades(student string) ([]models.GradeEntry, error) {
	entries := []models.GradeEntry{}
	query := s.Converter(`
		SELECT student_id, subject_id, term, cc_score, exam_score
		FROM grades
		WHERE student_id = ?
		ORDER BY subject_id, term
	`)
	if err := s.DB.Select(&entries, query, student); err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}
	return entries, nil
}
