package models

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError points at a single invalid field of a submitted record.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a record is rejected at the point of entry.
// Nothing is written when it is returned.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, fields ...FieldError) error {
	return &ValidationError{Err: err, Fields: fields}
}

// Invalid is a shortcut for a validation error on a single field.
func Invalid(field, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	return &ValidationError{
		Err:    fmt.Errorf("invalid %s: %s", field, msg),
		Fields: []FieldError{{Field: field, Message: msg}},
	}
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NotFoundError is returned when a lookup by identity finds nothing.
type NotFoundError struct {
	Kind string
	Key  string
}

func NewNotFoundError(kind, key string) error {
	return &NotFoundError{Kind: kind, Key: key}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

// IncompleteDataError means a subject is missing at least one term average.
// Aggregation turns it into a zero contribution; it is never shown to users.
type IncompleteDataError struct {
	Missing []Term
}

func (e *IncompleteDataError) Error() string {
	terms := make([]string, 0, len(e.Missing))
	for _, t := range e.Missing {
		terms = append(terms, t.String())
	}
	return "incomplete data: missing " + strings.Join(terms, ", ")
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsIncomplete(err error) bool {
	var inc *IncompleteDataError
	return errors.As(err, &inc)
}
