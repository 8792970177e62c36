package core

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnauthenticated  = errors.New("user not authenticated")
	// ErrExternalService is returned (wrapped) whenever the AI collaborator is unreachable or answers garbage.
	ErrExternalService = errors.New("external service failure")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	msgs := make([]string, 0, len(err.Fields))
	for _, f := range err.Fields {
		msgs = append(msgs, f.Field+": "+f.Error)
	}
	return strings.Join(msgs, "; ")
}

func (err ValidationError) Unwrap() error {
	return err.Err
}

// IsValidationError reports whether err (or its cause) is a *ValidationError.
func IsValidationError(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
