package scoring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/betyg/internal/catalog"
	"github.com/shrimpsizemoose/betyg/internal/models"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListSubjects(level, track string) ([]models.Subject, error) {
	args := m.Called(level, track)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subject), args.Error(1)
}

type gradeLookup func(student string, subjectID int, term models.Term) *models.GradeEntry

func (m *MockStore) GetGrade(student string, subjectID int, term models.Term) (*models.GradeEntry, error) {
	args := m.Called(student, subjectID, term)
	if lookup, ok := args.Get(0).(gradeLookup); ok {
		return lookup(student, subjectID, term), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GradeEntry), args.Error(1)
}

func (m *MockStore) ListStudents(level, track string) ([]models.Student, error) {
	args := m.Called(level, track)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Student), args.Error(1)
}

func (m *MockStore) GetStudent(id string) (*models.Student, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Student), args.Error(1)
}

type gradeKey struct {
	student string
	subject int
	term    models.Term
}

type gradebook map[gradeKey]models.GradeEntry

func (g gradebook) year(student string, subjectID int, cc, exam float64) {
	for _, term := range models.Terms {
		g.set(student, subjectID, term, cc, exam)
	}
}

func (g gradebook) set(student string, subjectID int, term models.Term, cc, exam float64) {
	g[gradeKey{student, subjectID, term}] = models.GradeEntry{
		Student:   student,
		SubjectID: subjectID,
		Term:      term,
		CC:        models.Score(cc),
		Exam:      models.Score(exam),
	}
}

func (g gradebook) lookup() gradeLookup {
	return func(student string, subjectID int, term models.Term) *models.GradeEntry {
		e, ok := g[gradeKey{student, subjectID, term}]
		if !ok {
			return nil
		}
		return &e
	}
}

func student(id string) models.Student {
	return models.Student{
		ID:        id,
		LastName:  "Doe",
		FirstName: id,
		BirthDate: "2007-03-01",
		Sex:       models.Female,
		Level:     "bac",
		Track:     "science",
	}
}

var cohortSubjects = []models.Subject{
	{ID: 1, Name: "Mathematics", Coefficient: 4, Level: "bac", Track: "science"},
	{ID: 2, Name: "Philosophy", Coefficient: 2, Level: "bac", Track: "science"},
}

func newTestGrader(t *testing.T) (*Grader, *MockStore, gradebook) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	store := new(MockStore)
	book := gradebook{}
	store.On("GetGrade", mock.Anything, mock.Anything, mock.Anything).Return(book.lookup(), nil)

	return NewGrader(store, cat), store, book
}

func TestGrader_ComputeCohortRanking(t *testing.T) {
	grader, store, book := newTestGrader(t)

	book.year("ETU-a", 1, 18, 18)
	book.year("ETU-a", 2, 18, 18)
	book.year("ETU-b", 1, 12, 12)
	book.year("ETU-b", 2, 12, 12)
	book.year("ETU-c", 1, 15.5, 15.5)
	book.year("ETU-c", 2, 15.5, 15.5)
	book.set("ETU-d", 1, models.Term1, 19, 19)
	book.set("ETU-d", 1, models.Term2, 19, 19)
	book.year("ETU-e", 1, 8.5, 8.5)
	book.year("ETU-e", 2, 8.5, 8.5)

	store.On("ListSubjects", "bac", "science").Return(cohortSubjects, nil)
	store.On("ListStudents", "bac", "science").Return([]models.Student{
		student("ETU-d"), student("ETU-b"), student("ETU-e"), student("ETU-a"), student("ETU-c"),
	}, nil)

	results, err := grader.ComputeCohortRanking("bac", "science")
	require.NoError(t, err)
	require.Len(t, results, 5)

	expected := []struct {
		id       string
		average  float64
		credits  int
		mention  models.Mention
		decision models.Decision
	}{
		{"ETU-a", 18, 6, models.MentionExcellent, models.DecisionAdmitted},
		{"ETU-c", 15.5, 6, models.MentionGood, models.DecisionAdmitted},
		{"ETU-b", 12, 6, models.MentionFairlyGood, models.DecisionAdmitted},
		{"ETU-e", 8.5, 0, models.MentionInsufficient, models.DecisionRetake},
		{"ETU-d", 0, 0, models.MentionInsufficient, models.DecisionRejected},
	}

	for i, want := range expected {
		got := results[i]
		assert.Equal(t, want.id, got.Student.ID)
		assert.Equal(t, i+1, got.Rank)
		assert.InDelta(t, want.average, got.GeneralAverage, 1e-9, want.id)
		assert.Equal(t, want.credits, got.Credits, want.id)
		assert.Equal(t, want.mention, got.Mention, want.id)
		assert.Equal(t, want.decision, got.Decision, want.id)
	}

	t.Run("per subject lines", func(t *testing.T) {
		d := results[4]
		require.Len(t, d.Subjects, 2)
		assert.True(t, d.Subjects[0].Recorded)
		assert.False(t, d.Subjects[0].Complete)
		assert.InDelta(t, 19, d.Subjects[0].TermAverages[models.Term1], 1e-9)
		assert.False(t, d.Subjects[1].Recorded)
		assert.InDelta(t, 19, d.TermAverages[models.Term1], 1e-9)
		_, graded := d.TermAverages[models.Term3]
		assert.False(t, graded)
	})

	store.AssertExpectations(t)
}

func TestGrader_ComputeCohortRankingEdges(t *testing.T) {
	t.Run("cohort without subjects yields no results", func(t *testing.T) {
		grader, store, _ := newTestGrader(t)
		store.On("ListSubjects", "y2", "letters").Return([]models.Subject{}, nil)

		results, err := grader.ComputeCohortRanking("y2", "letters")
		require.NoError(t, err)
		assert.Empty(t, results)
		store.AssertNotCalled(t, "ListStudents", "y2", "letters")
	})

	t.Run("track not offered at level", func(t *testing.T) {
		grader, _, _ := newTestGrader(t)
		_, err := grader.ComputeCohortRanking("y1", "mathematics")
		assert.True(t, models.IsValidation(err))
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		grader, store, _ := newTestGrader(t)
		boom := errors.New("disk on fire")
		store.On("ListSubjects", "bac", "science").Return(nil, boom)

		_, err := grader.ComputeCohortRanking("bac", "science")
		assert.ErrorIs(t, err, boom)
	})
}

func TestGrader_ComputeAnnualAverage(t *testing.T) {
	grader, store, book := newTestGrader(t)

	a := student("ETU-a")
	store.On("GetStudent", "ETU-a").Return(&a, nil)
	store.On("GetStudent", "ETU-x").Return(nil, nil)
	store.On("GetStudent", "ETU-n").Return(&models.Student{ID: "ETU-n"}, nil)
	store.On("ListSubjects", "bac", "science").Return(cohortSubjects, nil)

	// maths: 12, 14, 16 by term -> 14.5; philosophy incomplete -> 0
	book.set("ETU-a", 1, models.Term1, 12, 12)
	book.set("ETU-a", 1, models.Term2, 14, 14)
	book.set("ETU-a", 1, models.Term3, 16, 16)
	book.set("ETU-a", 2, models.Term1, 20, 20)

	t.Run("weighted over recorded subjects", func(t *testing.T) {
		avg, credits, err := grader.ComputeAnnualAverage("ETU-a", "bac", "science")
		require.NoError(t, err)
		// (14.5 * 4 + 0 * 2) / 6 = 9.666..
		assert.InDelta(t, 9.67, avg, 1e-9)
		assert.Equal(t, 4, credits)
	})

	t.Run("student without grades", func(t *testing.T) {
		avg, credits, err := grader.ComputeAnnualAverage("ETU-n", "bac", "science")
		require.NoError(t, err)
		assert.Equal(t, 0.0, avg)
		assert.Equal(t, 0, credits)
	})

	t.Run("unknown student", func(t *testing.T) {
		_, _, err := grader.ComputeAnnualAverage("ETU-x", "bac", "science")
		assert.True(t, models.IsNotFound(err))
	})
}

func TestGrader_ComputeStudentResult(t *testing.T) {
	grader, store, book := newTestGrader(t)

	a, b := student("ETU-a"), student("ETU-b")
	store.On("GetStudent", "ETU-b").Return(&b, nil)
	store.On("ListSubjects", "bac", "science").Return(cohortSubjects, nil)
	store.On("ListStudents", "bac", "science").Return([]models.Student{a, b}, nil)

	book.year("ETU-a", 1, 10, 10)
	book.year("ETU-b", 1, 11, 11)

	result, err := grader.ComputeStudentResult("ETU-b")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Rank)
	assert.InDelta(t, 11, result.GeneralAverage, 1e-9)
	assert.Equal(t, models.MentionPass, result.Mention)
	assert.Equal(t, 4, result.Credits)
}
