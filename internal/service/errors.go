// Package service implements the cinema back-end operations: identity and
// sessions, the movie catalog and the reservation engine.  Every operation
// takes the caller's auth.Principal explicitly.
package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/iliyamo/b-cinema/internal/auth"
	"github.com/iliyamo/b-cinema/internal/repository"
)

var (
	// ErrDuplicateEmail is returned by Register when the email is in use.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrInvalidCredentials is returned by Login for any failed attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// The following alias lower layers so callers only match on this package.
	ErrNotFound         = repository.ErrNotFound
	ErrConflict         = repository.ErrConflict
	ErrUnauthorized     = auth.ErrUnauthorized
	ErrProtectedAccount = auth.ErrProtectedAccount
)

// ValidationError reports rejected input per field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// FieldError builds a ValidationError for a single field.
func FieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// add records msg for field unless the field already has a message.
func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// orNil returns e when it holds at least one field, nil otherwise.
func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
