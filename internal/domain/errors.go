package domain

import (
	"errors"
	"fmt"
)

// Kind classifies failures that cross a component boundary
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindValidation
	KindUpstream
	KindDocumentGeneration
)

// String returns the machine-oriented error code sent to API clients
func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation_error"
	case KindUpstream:
		return "upstream_failure"
	case KindDocumentGeneration:
		return "document_generation_failed"
	default:
		return "internal_error"
	}
}

// Error is the tagged error returned by services and upstream adapters.
// Upstream-specific error shapes are translated into an Error where the call is made.
type Error struct {
	// Kind is the taxonomy tag
	Kind Kind

	// Op is the operation that failed
	Op string

	// Err is the underlying error
	Err error

	// Fields carries per-field validation messages
	Fields map[string]string
}

// Error returns a string representation of the error
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error of the given kind
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// NewValidationError creates a validation Error carrying field messages
func NewValidationError(op string, fields map[string]string) *Error {
	return &Error{
		Kind:   KindValidation,
		Op:     op,
		Err:    errors.New("invalid input"),
		Fields: fields,
	}
}

// KindOf returns the Kind of the first Error in err's chain, or KindInternal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// FieldsOf returns validation field messages carried by err, if any
func FieldsOf(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

// IsKind reports whether err carries the given Kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
