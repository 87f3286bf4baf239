package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrIllegalTransition is returned when a requested status edge does not
	// exist, including any move out of a terminal status.
	ErrIllegalTransition = errors.New("illegal transition")

	// ErrInvalidState is returned when an operation's status precondition is
	// not met, e.g. scheduling an interview for a non-shortlisted application.
	ErrInvalidState = errors.New("invalid state")

	// ErrValidation marks field-level input failures. Typed details travel in
	// ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrConcurrentModification is returned when an optimistic write loses the
	// race; callers retry with a fresh read.
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrPersistence is returned when the backing store is unavailable.
	ErrPersistence = errors.New("persistence unavailable")

	ErrNotFound = errors.New("not found")

	// ErrPartialSuccess marks a committed status change whose notification
	// append failed. The status is never rolled back for it.
	ErrPartialSuccess = errors.New("partial success")
)

// ValidationError carries every violated field found in a single validation
// pass, so callers can render all problems at once.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
}

func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrValidation.Error()
	}

	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}

	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// PartialSuccessError reports that the application status was committed but
// the inbox append failed. Callers retry the notification step only.
type PartialSuccessError struct {
	Application *Application
	Cause       error
}

func (e *PartialSuccessError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return ErrPartialSuccess.Error()
	}
	return fmt.Sprintf("%s: status committed but notification append failed: %v", ErrPartialSuccess.Error(), e.Cause)
}

func (e *PartialSuccessError) Is(target error) bool {
	return target == ErrPartialSuccess
}

func (e *PartialSuccessError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}
