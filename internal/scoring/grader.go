package scoring

import (
	"fmt"

	"github.com/shrimpsizemoose/betyg/internal/catalog"
	"github.com/shrimpsizemoose/betyg/internal/models"
)

// GradeReader is the part of the record store the grader reads from.
type GradeReader interface {
	ListSubjects(level, track string) ([]models.Subject, error)
	GetGrade(student string, subjectID int, term models.Term) (*models.GradeEntry, error)
	ListStudents(level, track string) ([]models.Student, error)
	GetStudent(id string) (*models.Student, error)
}

type Grader struct {
	store   GradeReader
	catalog *catalog.Catalog
}

func NewGrader(store GradeReader, catalog *catalog.Catalog) *Grader {
	return &Grader{
		store:   store,
		catalog: catalog,
	}
}

func (g *Grader) subjectLines(student string, subjects []models.Subject) ([]models.SubjectResult, error) {
	lines := make([]models.SubjectResult, 0, len(subjects))
	for _, subject := range subjects {
		var entries []models.GradeEntry
		for _, term := range models.Terms {
			entry, err := g.store.GetGrade(student, subject.ID, term)
			if err != nil {
				return nil, fmt.Errorf("failed to get grade %s/%d/%d: %w", student, subject.ID, term, err)
			}
			if entry != nil {
				entries = append(entries, *entry)
			}
		}

		line, err := SubjectLine(subject, entries)
		if err != nil {
			return nil, fmt.Errorf("bad grade for %s in %s: %w", student, subject.Name, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (g *Grader) getStudent(id string) (*models.Student, error) {
	student, err := g.store.GetStudent(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get student %s: %w", id, err)
	}
	if student == nil {
		return nil, models.NewNotFoundError("student", id)
	}
	return student, nil
}

// ComputeAnnualAverage returns the general average and earned credits of a
// student over the subjects of the given cohort.
func (g *Grader) ComputeAnnualAverage(studentID, level, track string) (float64, int, error) {
	if err := g.catalog.ValidateEnrollment(level, track); err != nil {
		return 0, 0, err
	}
	if _, err := g.getStudent(studentID); err != nil {
		return 0, 0, err
	}

	subjects, err := g.store.ListSubjects(level, track)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list subjects: %w", err)
	}

	lines, err := g.subjectLines(studentID, subjects)
	if err != nil {
		return 0, 0, err
	}

	average, credits := GeneralAverage(lines)
	return average, credits, nil
}

func (g *Grader) evaluate(student models.Student, level models.Level, subjects []models.Subject) (models.Result, error) {
	lines, err := g.subjectLines(student.ID, subjects)
	if err != nil {
		return models.Result{}, err
	}

	average, credits := GeneralAverage(lines)
	return models.Result{
		Student:        student,
		Subjects:       lines,
		TermAverages:   TermAverages(lines),
		GeneralAverage: average,
		Credits:        credits,
		Mention:        ClassifyMention(average),
		Decision:       ClassifyDecision(average, level),
	}, nil
}

// ComputeCohortRanking evaluates every student of the cohort and ranks them.
// A cohort without subjects has no results.
func (g *Grader) ComputeCohortRanking(level, track string) ([]models.Result, error) {
	if err := g.catalog.ValidateEnrollment(level, track); err != nil {
		return nil, err
	}
	lvl, err := g.catalog.Level(level)
	if err != nil {
		return nil, err
	}

	subjects, err := g.store.ListSubjects(level, track)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	if len(subjects) == 0 {
		return []models.Result{}, nil
	}

	students, err := g.store.ListStudents(level, track)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	results := make([]models.Result, 0, len(students))
	for _, student := range students {
		result, err := g.evaluate(student, lvl, subjects)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	Rank(results)
	return results, nil
}

// ComputeStudentResult returns the ranked result of one student within
// their cohort.
func (g *Grader) ComputeStudentResult(studentID string) (*models.Result, error) {
	student, err := g.getStudent(studentID)
	if err != nil {
		return nil, err
	}

	results, err := g.ComputeCohortRanking(student.Level, student.Track)
	if err != nil {
		return nil, err
	}
	for i := range results {
		if results[i].Student.ID == studentID {
			return &results[i], nil
		}
	}

	// cohort without subjects: empty, unranked result
	lvl, err := g.catalog.Level(student.Level)
	if err != nil {
		return nil, err
	}
	result, err := g.evaluate(*student, lvl, nil)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
