package models

import (
	"strings"
	"time"
)

type Sex string

const (
	Female Sex = "F"
	Male   Sex = "M"
)

type Student struct {
	ID        string `db:"id" json:"id" validate:"required,max=32"`
	LastName  string `db:"last_name" json:"last_name" validate:"required,max=100"`
	FirstName string `db:"first_name" json:"first_name" validate:"required,max=100"`
	BirthDate string `db:"birth_date" json:"birth_date" validate:"required,datetime=2006-01-02,notfuture"`
	Sex       Sex    `db:"sex" json:"sex" validate:"required,oneof=F M"`
	Level     string `db:"level" json:"level" validate:"required"`
	Track     string `db:"track" json:"track" validate:"required"`
}

// Normalize trims the free-text fields before validation and storage.
func (s *Student) Normalize() {
	s.ID = strings.TrimSpace(s.ID)
	s.LastName = strings.TrimSpace(s.LastName)
	s.FirstName = strings.TrimSpace(s.FirstName)
	s.BirthDate = strings.TrimSpace(s.BirthDate)
}

// Validate checks the record on its own. Whether the track is offered at the
// level is up to the catalog.
func (s *Student) Validate() error {
	return validateStruct("student", s)
}

// Age in whole years at the given moment.
func (s Student) Age(at time.Time) (int, bool) {
	born, err := time.Parse(DateLayout, s.BirthDate)
	if err != nil {
		return 0, false
	}
	age := at.Year() - born.Year()
	if at.Month() < born.Month() || (at.Month() == born.Month() && at.Day() < born.Day()) {
		age--
	}
	return age, true
}

/*
CREATE TABLE students (
    id TEXT PRIMARY KEY,
    last_name TEXT NOT NULL CHECK (length(last_name) > 0),
    first_name TEXT NOT NULL CHECK (length(first_name) > 0),
    birth_date TEXT NOT NULL,
    sex TEXT NOT NULL CHECK (sex IN ('F', 'M')),
    level TEXT NOT NULL,
    track TEXT NOT NULL
);
*/
