package app

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/betyg/internal/catalog"
	"github.com/shrimpsizemoose/betyg/internal/metrics"
	"github.com/shrimpsizemoose/betyg/internal/models"
	"github.com/shrimpsizemoose/betyg/internal/scoring"
	"github.com/shrimpsizemoose/betyg/internal/store"
)

const studentIDPrefix = "ETU-"

type Service struct {
	Config  *Config
	Store   store.GradeStore
	Catalog *catalog.Catalog
	Grader  *scoring.Grader
	Cache   *RankingCache
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewServiceFromConfig(config)
}

// NewServiceFromConfig opens the store, seeds it with the catalog subjects
// and connects the ranking cache.
func NewServiceFromConfig(config *Config) (*Service, error) {
	cat, err := loadCatalog(config.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	st, err := NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	if err := st.SeedSubjects(cat.AllSubjects()); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to seed subjects: %w", err)
	}

	cache, err := NewRankingCache(config)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to init cache: %w", err)
	}

	return &Service{
		Config:  config,
		Store:   st,
		Catalog: cat,
		Grader:  scoring.NewGrader(st, cat),
		Cache:   cache,
	}, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

func (s *Service) ValidateHeaders(headers map[string][]string) bool {
	for _, required := range s.Config.API.RequiredHeaders {
		value := headers[http.CanonicalHeaderKey(required.Name)]
		if len(value) == 0 || !strings.EqualFold(value[0], required.Value) {
			return false
		}
	}
	return true
}

func (s *Service) Levels() []models.Level {
	return s.Catalog.Levels()
}

func (s *Service) Subjects(level, track string) ([]models.Subject, error) {
	if err := s.Catalog.ValidateEnrollment(level, track); err != nil {
		return nil, err
	}
	return s.Store.ListSubjects(level, track)
}

func (s *Service) ListStudents(level, track string) ([]models.Student, error) {
	if err := s.Catalog.ValidateEnrollment(level, track); err != nil {
		return nil, err
	}
	return s.Store.ListStudents(level, track)
}

func (s *Service) GetStudent(id string) (*models.Student, error) {
	student, err := s.Store.GetStudent(id)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, models.NewNotFoundError("student", id)
	}
	return student, nil
}

func newStudentID() string {
	return studentIDPrefix + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// CreateStudent registers a student. An empty id gets a generated one.
func (s *Service) CreateStudent(ctx context.Context, student *models.Student) error {
	student.Normalize()
	if student.ID == "" {
		student.ID = newStudentID()
	}
	if err := s.Catalog.ValidateEnrollment(student.Level, student.Track); err != nil {
		metrics.ValidationErrorsTotal.WithLabelValues("create_student").Inc()
		return err
	}
	if err := s.Store.CreateStudent(student); err != nil {
		if models.IsValidation(err) {
			metrics.ValidationErrorsTotal.WithLabelValues("create_student").Inc()
		}
		return err
	}

	logger.Info.Printf("Registered student %s in %s/%s", student.ID, student.Level, student.Track)
	s.Cache.Invalidate(ctx, cohortOf(*student))
	return nil
}

// UpdateStudent replaces the stored record. The id in the path wins and
// cannot be changed through the body.
func (s *Service) UpdateStudent(ctx context.Context, id string, student *models.Student) error {
	student.Normalize()
	if student.ID != "" && student.ID != id {
		metrics.ValidationErrorsTotal.WithLabelValues("update_student").Inc()
		return models.Invalid("id", "cannot change student id from %s to %s", id, student.ID)
	}
	student.ID = id

	current, err := s.GetStudent(id)
	if err != nil {
		return err
	}
	if err := s.Catalog.ValidateEnrollment(student.Level, student.Track); err != nil {
		metrics.ValidationErrorsTotal.WithLabelValues("update_student").Inc()
		return err
	}
	if err := s.Store.UpdateStudent(student); err != nil {
		if models.IsValidation(err) {
			metrics.ValidationErrorsTotal.WithLabelValues("update_student").Inc()
		}
		return err
	}

	s.Cache.Invalidate(ctx, cohortOf(*current), cohortOf(*student))
	return nil
}

// DeleteStudent removes the student together with their grades.
func (s *Service) DeleteStudent(ctx context.Context, id string) error {
	current, err := s.GetStudent(id)
	if err != nil {
		return err
	}

	deleted, err := s.Store.DeleteStudent(id)
	if err != nil {
		return err
	}
	if !deleted {
		return models.NewNotFoundError("student", id)
	}

	logger.Info.Printf("Deleted student %s", id)
	s.Cache.Invalidate(ctx, cohortOf(*current))
	return nil
}

type gradeKey struct {
	subject int
	term    models.Term
}

// checkEntries makes sure every entry belongs to the student and to a
// subject of the student's cohort, with no (subject, term) twice.
func (s *Service) checkEntries(student *models.Student, entries []models.GradeEntry) error {
	seen := make(map[gradeKey]bool, len(entries))
	for i := range entries {
		e := &entries[i]
		if e.Student == "" {
			e.Student = student.ID
		}
		if e.Student != student.ID {
			return models.Invalid("student_id", "entry for %s submitted under %s", e.Student, student.ID)
		}
		if err := e.Validate(); err != nil {
			return err
		}

		subject, ok := s.Catalog.Subject(e.SubjectID)
		if !ok || subject.Level != student.Level || subject.Track != student.Track {
			return models.Invalid("subject_id", "subject %d is not taught in %s/%s",
				e.SubjectID, student.Level, student.Track)
		}

		key := gradeKey{subject: e.SubjectID, term: e.Term}
		if seen[key] {
			return models.Invalid("subject_id", "subject %d appears twice for %s", e.SubjectID, e.Term)
		}
		seen[key] = true
	}
	return nil
}

// SubmitGrade records one entry, replacing what was stored for the same
// (student, subject, term).
func (s *Service) SubmitGrade(ctx context.Context, entry models.GradeEntry) error {
	return s.SubmitGrades(ctx, entry.Student, []models.GradeEntry{entry})
}

// SubmitGrades validates the whole batch before writing any of it, then
// writes it in one transaction.
func (s *Service) SubmitGrades(ctx context.Context, studentID string, entries []models.GradeEntry) error {
	student, err := s.GetStudent(studentID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	if err := s.checkEntries(student, entries); err != nil {
		metrics.ValidationErrorsTotal.WithLabelValues("submit_grades").Inc()
		return err
	}

	if len(entries) == 1 {
		err = s.Store.UpsertGrade(entries[0])
	} else {
		err = s.Store.UpsertGrades(entries)
	}
	if err != nil {
		return err
	}

	for _, e := range entries {
		metrics.GradesSubmittedTotal.WithLabelValues(student.Level, student.Track, strconv.Itoa(int(e.Term))).Inc()
	}
	logger.Debug.Printf("Stored %d grade entries for %s", len(entries), student.ID)
	s.Cache.Invalidate(ctx, cohortOf(*student))
	return nil
}

// GradeLine is a recorded entry with its subject and computed average.
type GradeLine struct {
	models.GradeEntry
	Subject string   `json:"subject"`
	Average *float64 `json:"average"`
}

func (s *Service) StudentGrades(id string) ([]GradeLine, error) {
	if _, err := s.GetStudent(id); err != nil {
		return nil, err
	}

	entries, err := s.Store.ListStudentGrades(id)
	if err != nil {
		return nil, err
	}

	lines := make([]GradeLine, 0, len(entries))
	for _, e := range entries {
		line := GradeLine{GradeEntry: e}
		if subject, ok := s.Catalog.Subject(e.SubjectID); ok {
			line.Subject = subject.Name
		}
		avg, ok, err := scoring.SubjectAverage(e)
		if err != nil {
			return nil, err
		}
		if ok {
			line.Average = &avg
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// CohortRanking serves the ranking from the cache when it can and
// recomputes it otherwise.
func (s *Service) CohortRanking(ctx context.Context, level, track string) ([]models.Result, error) {
	if cached, ok := s.Cache.Get(ctx, level, track); ok {
		metrics.RankingCacheTotal.WithLabelValues("hit").Inc()
		return cached, nil
	}
	if s.Cache.Enabled() {
		metrics.RankingCacheTotal.WithLabelValues("miss").Inc()
	}

	start := time.Now()
	results, err := s.Grader.ComputeCohortRanking(level, track)
	if err != nil {
		return nil, err
	}
	metrics.RankingComputeDuration.WithLabelValues(level, track).Observe(time.Since(start).Seconds())

	for _, r := range results {
		metrics.GeneralAverageHistogram.WithLabelValues(level, track).Observe(r.GeneralAverage)
	}

	s.Cache.Set(ctx, level, track, results)
	return results, nil
}

// StudentResult is the ranked yearly result of one student.
func (s *Service) StudentResult(ctx context.Context, id string) (*models.Result, error) {
	student, err := s.GetStudent(id)
	if err != nil {
		return nil, err
	}

	ranking, err := s.CohortRanking(ctx, student.Level, student.Track)
	if err != nil {
		return nil, err
	}
	for i := range ranking {
		if ranking[i].Student.ID == id {
			return &ranking[i], nil
		}
	}

	return s.Grader.ComputeStudentResult(id)
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("cache: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
