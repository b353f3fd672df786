// internal/store/sqlite/store_test.go
package sqlite

import (
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/betyg/internal/models"
	"github.com/shrimpsizemoose/betyg/internal/store"
	"github.com/shrimpsizemoose/betyg/migrations"
)

// setupTestDB creates an in-memory SQLite database and initializes schema
func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	s, err := NewSQLiteStore(&store.DBConfig{DSN: ":memory:", Type: store.DBTypeSQLite}, migrations.Files)
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		err := s.Close()
		require.NoError(t, err, "Failed to close database")
	}

	return s, cleanup
}

type testData struct {
	store    *SQLiteStore
	subjects []models.Subject
	student  models.Student
}

func setupTestData(t *testing.T) (*testData, func()) {
	s, cleanup := setupTestDB(t)

	subjects := []models.Subject{
		{ID: 1, Name: "Mathematics", Coefficient: 4, Level: "bac", Track: "science"},
		{ID: 2, Name: "Philosophy", Coefficient: 1, Level: "bac", Track: "science"},
		{ID: 3, Name: "Arabic", Coefficient: 4, Level: "bac", Track: "letters"},
	}
	require.NoError(t, s.SeedSubjects(subjects), "Failed to seed subjects")

	student := models.Student{
		ID:        "ETU-0001",
		LastName:  "Ben Ali",
		FirstName: "Sarra",
		BirthDate: "2006-09-14",
		Sex:       models.Female,
		Level:     "bac",
		Track:     "science",
	}
	require.NoError(t, s.CreateStudent(&student), "Failed to insert test student")

	return &testData{
		store:    s,
		subjects: subjects,
		student:  student,
	}, cleanup
}

func TestMain(m *testing.M) {
	log.Println("Starting SQLite store tests...")
	code := m.Run()
	log.Println("Finished SQLite store tests")
	os.Exit(code)
}

func TestSubjectOperations(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("list cohort subjects", func(t *testing.T) {
		got, err := td.store.ListSubjects("bac", "science")
		require.NoError(t, err)
		assert.Equal(t, td.subjects[:2], got)
	})

	t.Run("unknown cohort has no subjects", func(t *testing.T) {
		got, err := td.store.ListSubjects("y1", "mathematics")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("seeding twice keeps the first version", func(t *testing.T) {
		changed := td.subjects[0]
		changed.Coefficient = 9
		require.NoError(t, td.store.SeedSubjects([]models.Subject{changed}))

		got, err := td.store.GetSubject(1)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 4, got.Coefficient)
	})

	t.Run("get non-existent subject", func(t *testing.T) {
		got, err := td.store.GetSubject(404)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestStudentOperations(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("get student", func(t *testing.T) {
		got, err := td.store.GetStudent(td.student.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, td.student, *got)
	})

	t.Run("duplicate id is rejected", func(t *testing.T) {
		dup := td.student
		dup.FirstName = "Other"
		err := td.store.CreateStudent(&dup)
		assert.True(t, models.IsValidation(err), "got %v", err)
	})

	t.Run("names are trimmed", func(t *testing.T) {
		s := models.Student{
			ID: "ETU-0002", LastName: "  Amri ", FirstName: " Youssef", BirthDate: "2006-01-02",
			Sex: models.Male, Level: "bac", Track: "science",
		}
		require.NoError(t, td.store.CreateStudent(&s))
		got, err := td.store.GetStudent("ETU-0002")
		require.NoError(t, err)
		assert.Equal(t, "Amri", got.LastName)
		assert.Equal(t, "Youssef", got.FirstName)
	})

	t.Run("list cohort ordered by name", func(t *testing.T) {
		got, err := td.store.ListStudents("bac", "science")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Amri", got[0].LastName)
		assert.Equal(t, "Ben Ali", got[1].LastName)

		all, err := td.store.ListAllStudents()
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("update student", func(t *testing.T) {
		updated := td.student
		updated.Track = "mathematics"
		require.NoError(t, td.store.UpdateStudent(&updated))

		got, err := td.store.GetStudent(td.student.ID)
		require.NoError(t, err)
		assert.Equal(t, "mathematics", got.Track)
	})

	t.Run("update unknown student", func(t *testing.T) {
		ghost := td.student
		ghost.ID = "ETU-9999"
		err := td.store.UpdateStudent(&ghost)
		assert.True(t, models.IsNotFound(err))
	})

	t.Run("invalid student is not written", func(t *testing.T) {
		bad := models.Student{ID: "ETU-0003", LastName: "X", FirstName: "Y", BirthDate: "2006-13-45",
			Sex: "?", Level: "bac", Track: "science"}
		err := td.store.CreateStudent(&bad)
		assert.True(t, models.IsValidation(err))

		got, err := td.store.GetStudent("ETU-0003")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("get non-existent student", func(t *testing.T) {
		got, err := td.store.GetStudent("not.exists")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestGradeOperations(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	id := td.student.ID

	t.Run("round trip keeps raw scores", func(t *testing.T) {
		entry := models.GradeEntry{
			Student: id, SubjectID: 1, Term: models.Term1,
			CC: models.Score(13.375), Exam: models.Score(9.125),
		}
		require.NoError(t, td.store.UpsertGrade(entry))

		got, err := td.store.GetGrade(id, 1, models.Term1)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, entry, *got)
	})

	t.Run("missing scores come back as nil", func(t *testing.T) {
		entry := models.GradeEntry{Student: id, SubjectID: 2, Term: models.Term1, CC: models.Score(0)}
		require.NoError(t, td.store.UpsertGrade(entry))

		got, err := td.store.GetGrade(id, 2, models.Term1)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.NotNil(t, got.CC)
		assert.Equal(t, 0.0, *got.CC)
		assert.Nil(t, got.Exam)
	})

	t.Run("second write replaces the first", func(t *testing.T) {
		first := models.GradeEntry{Student: id, SubjectID: 1, Term: models.Term2, CC: models.Score(8), Exam: models.Score(9)}
		second := models.GradeEntry{Student: id, SubjectID: 1, Term: models.Term2, CC: models.Score(15), Exam: models.Score(16)}
		require.NoError(t, td.store.UpsertGrade(first))
		require.NoError(t, td.store.UpsertGrade(second))

		all, err := td.store.ListStudentGrades(id)
		require.NoError(t, err)
		var forKey []models.GradeEntry
		for _, e := range all {
			if e.SubjectID == 1 && e.Term == models.Term2 {
				forKey = append(forKey, e)
			}
		}
		require.Len(t, forKey, 1)
		assert.Equal(t, second, forKey[0])
	})

	t.Run("out of range score is rejected and not written", func(t *testing.T) {
		bad := models.GradeEntry{Student: id, SubjectID: 1, Term: models.Term3, CC: models.Score(21), Exam: models.Score(10)}
		err := td.store.UpsertGrade(bad)
		assert.True(t, models.IsValidation(err))

		got, err := td.store.GetGrade(id, 1, models.Term3)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("batch is all or nothing", func(t *testing.T) {
		batch := []models.GradeEntry{
			{Student: id, SubjectID: 1, Term: models.Term3, CC: models.Score(10), Exam: models.Score(10)},
			{Student: id, SubjectID: 404, Term: models.Term3, CC: models.Score(10), Exam: models.Score(10)},
		}
		err := td.store.UpsertGrades(batch)
		require.Error(t, err, "unknown subject violates the foreign key")

		got, err := td.store.GetGrade(id, 1, models.Term3)
		require.NoError(t, err)
		assert.Nil(t, got)

		require.NoError(t, td.store.UpsertGrades(batch[:1]))
		got, err = td.store.GetGrade(id, 1, models.Term3)
		require.NoError(t, err)
		assert.NotNil(t, got)
	})

	t.Run("invalid term in batch stops everything", func(t *testing.T) {
		batch := []models.GradeEntry{
			{Student: id, SubjectID: 2, Term: models.Term2, CC: models.Score(10), Exam: models.Score(10)},
			{Student: id, SubjectID: 2, Term: models.Term(0), CC: models.Score(10), Exam: models.Score(10)},
		}
		err := td.store.UpsertGrades(batch)
		assert.True(t, models.IsValidation(err))

		got, err := td.store.GetGrade(id, 2, models.Term2)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("deleting the student drops their grades", func(t *testing.T) {
		deleted, err := td.store.DeleteStudent(id)
		require.NoError(t, err)
		assert.True(t, deleted)

		grades, err := td.store.ListStudentGrades(id)
		require.NoError(t, err)
		assert.Empty(t, grades)

		deleted, err = td.store.DeleteStudent(id)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestTranslateToSQLite(t *testing.T) {
	out := translateToSQLite("cc_score DOUBLE PRECISION, id VARCHAR(32)")
	assert.Equal(t, "cc_score REAL, id TEXT", out)
}
