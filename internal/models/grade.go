package models

import (
	"fmt"
	"math"
)

const (
	MinScore = 0.0
	MaxScore = 20.0
)

// Term is one of the three grading periods of a year.
type Term int

const (
	Term1 Term = 1
	Term2 Term = 2
	Term3 Term = 3
)

var Terms = [...]Term{Term1, Term2, Term3}

func (t Term) Valid() bool {
	return t >= Term1 && t <= Term3
}

func (t Term) String() string {
	return fmt.Sprintf("term %d", int(t))
}

// GradeEntry holds the scores of one student in one subject for one term.
// A nil score means "not graded yet", which is not the same as 0.
type GradeEntry struct {
	Student   string   `db:"student_id" json:"student_id" validate:"required"`
	SubjectID int      `db:"subject_id" json:"subject_id" validate:"gt=0"`
	Term      Term     `db:"term" json:"term" validate:"oneof=1 2 3"`
	CC        *float64 `db:"cc_score" json:"cc" validate:"omitempty,gte=0,lte=20"`
	Exam      *float64 `db:"exam_score" json:"exam" validate:"omitempty,gte=0,lte=20"`
}

func (g *GradeEntry) Validate() error {
	// NaN slips past range checks with confusing messages
	if g.CC != nil && (math.IsNaN(*g.CC) || math.IsInf(*g.CC, 0)) {
		return Invalid("cc", "must be a number")
	}
	if g.Exam != nil && (math.IsNaN(*g.Exam) || math.IsInf(*g.Exam, 0)) {
		return Invalid("exam", "must be a number")
	}
	return validateStruct("grade", g)
}

// Score is a convenience for building entries.
func Score(v float64) *float64 {
	return &v
}

/*
unique (student, subject, term) is enforced by the primary key:
CREATE TABLE grades (
    student_id TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    subject_id INTEGER NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
    term INTEGER NOT NULL CHECK (term IN (1, 2, 3)),
    cc_score DOUBLE PRECISION CHECK (cc_score >= 0 AND cc_score <= 20),
    exam_score DOUBLE PRECISION CHECK (exam_score >= 0 AND exam_score <= 20),
    CONSTRAINT grades_pkey PRIMARY KEY (student_id, subject_id, term)
);
*/
