// Package apierr defines the typed failure taxonomy shared by every service.
// The kinds mirror HTTP status semantics without an actual HTTP layer:
// validation (400), not-found (404), conflict (409), forbidden (403),
// network (simulated transient) and internal.
package apierr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports field-level input failures. Multiple fields and
// multiple messages per field may be reported at once.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, f := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e.Fields[f], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// NotFoundError names the entity kind and id that could not be resolved.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// ConflictError reports a uniqueness violation on a single field.
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %q already exists", e.Field, e.Value)
}

// ForbiddenError rejects operations on immutable or system-owned records.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return "forbidden: " + e.Reason
}

// NetworkError is the simulated transient failure injected by the request
// runner. It is never produced by domain code.
type NetworkError struct {
	Message string
}

func (e *NetworkError) Error() string {
	if e.Message == "" {
		return "network error"
	}
	return e.Message
}

// InternalError wraps an unexpected, unclassified failure.
type InternalError struct {
	Message string
	Err     error
}

func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("internal error: %s: %v", e.Message, e.Err)
	}
	return "internal error: " + e.Message
}

func (e *InternalError) Unwrap() error { return e.Err }

// FieldErrors accumulates validation messages before constructing a
// ValidationError. Services report every violation, not just the first.
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Err returns a ValidationError when any message was recorded, nil otherwise.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

func IsForbidden(err error) bool {
	var e *ForbiddenError
	return errors.As(err, &e)
}

func IsNetwork(err error) bool {
	var e *NetworkError
	return errors.As(err, &e)
}
