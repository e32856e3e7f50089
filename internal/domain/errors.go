package domain

import (
	"errors"
	"fmt"
)

// NotFoundError identifies a missing resource; handlers map it to 404
// without leaking internal detail.
type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// ValidationError carries per-field messages accumulated before any query
// or mutation runs; handlers map it to 422 with all fields present.
type ValidationError struct {
	Fields map[string][]string
}

func (e ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation error"
	}
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// AuthError distinguishes missing/invalid credentials (401) from an
// authenticated caller who is not allowed (403, Forbidden set).
type AuthError struct {
	Forbidden bool
	Msg       string
	Err       error
}

func (e AuthError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Forbidden {
		return "forbidden"
	}
	return "unauthenticated"
}

func (e AuthError) Unwrap() error { return e.Err }

// DependencyError wraps storage or cache failures; handlers map it to 500
// with a generic message, full detail goes to server logs only.
type DependencyError struct {
	Dep string
	Err error
}

func (e DependencyError) Error() string {
	if e.Dep == "" {
		return "dependency error"
	}
	return fmt.Sprintf("%s unavailable", e.Dep)
}

func (e DependencyError) Unwrap() error { return e.Err }

// ConflictError marks unique-constraint style collisions (e.g., duplicate
// email on register).
type ConflictError struct {
	Resource string
	Msg      string
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsAuth(err error) bool {
	var target AuthError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}
