package models

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError reports a missing profile, template, instance, or plan.
// It always carries the domain identifier and never wraps the underlying
// storage error.
type NotFoundError struct {
	Kind string // "profile", "template", "instance", "plan"
	ID   string
	// Scope qualifies the lookup, e.g. the project slug for instances.
	Scope string
}

func (e *NotFoundError) Error() string {
	if e.Scope != "" {
		return fmt.Sprintf("%s %q not found in project %q", e.Kind, e.ID, e.Scope)
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// NewNotFound creates a NotFoundError for the given kind and identifier.
func NewNotFound(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// Violation is one schema or structural constraint failure.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Field == "" {
		return v.Message
	}
	return v.Field + ": " + v.Message
}

// ValidationError carries the complete list of violations found in one
// pass, so callers can fix every problem at once.
type ValidationError struct {
	Subject    string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%s validation failed: %s", e.Subject, strings.Join(parts, "; "))
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// CycleError reports an inheritance cycle, naming the identifier where the
// cycle closed.
type CycleError struct {
	ProfileID string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("profile inheritance cycle detected at %q", e.ProfileID)
}

// StateError reports an operation attempted from an illegal state, such as
// executing a plan that is no longer pending.
type StateError struct {
	Op      string
	Current string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s not allowed: current status is %q", e.Op, e.Current)
}
