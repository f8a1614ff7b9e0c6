package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both missing resources and resources the caller may not
	// see; access failures are never distinguished from absence.
	ErrNotFound = errors.New("not found")

	// ErrConflict signals a duplicate username, email or share token on create.
	ErrConflict = errors.New("already exists")

	// ErrInvalidCredentials signals a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken signals a missing, malformed or expired bearer token.
	ErrInvalidToken = errors.New("invalid token")
)

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates per-field validation failures for a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Fields[0].Field, e.Fields[0].Message)
}

// NewValidationError builds a ValidationError from field/message pairs.
func NewValidationError(pairs ...string) *ValidationError {
	ve := &ValidationError{}
	for i := 0; i+1 < len(pairs); i += 2 {
		ve.Fields = append(ve.Fields, FieldError{Field: pairs[i], Message: pairs[i+1]})
	}
	return ve
}
