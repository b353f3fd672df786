package models

type Subject struct {
	ID          int    `db:"id" json:"id" validate:"gt=0"`
	Name        string `db:"name" json:"name" validate:"required"`
	Coefficient int    `db:"coefficient" json:"coefficient" validate:"gt=0"`
	Level       string `db:"level" json:"level" validate:"required"`
	Track       string `db:"track" json:"track" validate:"required"`
}

func (s *Subject) Validate() error {
	return validateStruct("subject", s)
}

/*
CREATE TABLE subjects (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    coefficient INTEGER NOT NULL CHECK (coefficient > 0),
    level TEXT NOT NULL,
    track TEXT NOT NULL,
    CONSTRAINT subjects_name_cohort_key UNIQUE (name, level, track)
);
*/
