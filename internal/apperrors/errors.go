package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failure so the routing layer can map it to an HTTP status
// without inspecting error strings.
type Kind int

const (
	KindValidation Kind = iota // malformed or missing required field
	KindNotFound               // id does not resolve in the referenced collection
	KindConflict               // uniqueness or membership violation
	KindStore                  // underlying store I/O failure
)

// Error is the typed failure every repository and coordinator operation
// returns. The zero fields are omitted from the client-facing payload.
type Error struct {
	Kind     Kind
	Resource string // NotFound: what was missing ("user", "thought", "reaction", "friend")
	Field    string // Validation/Conflict: the offending field
	Value    string // Conflict: the conflicting value
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "request failed"
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports a malformed or missing field.
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// NotFound reports that an id did not resolve to a stored entity.
func NotFound(resource string) *Error {
	return &Error{
		Kind:     KindNotFound,
		Resource: resource,
		Message:  fmt.Sprintf("no %s was found with this id", resource),
	}
}

// Conflict reports a uniqueness or membership violation.
func Conflict(field, value, message string) *Error {
	return &Error{Kind: KindConflict, Field: field, Value: value, Message: message}
}

// Store wraps an I/O failure from the document store. The wrapped detail is
// logged server-side and never exposed to callers.
func Store(err error) *Error {
	return &Error{Kind: KindStore, Message: "internal storage error", Err: err}
}

// StepFailure records one failed step of a multi-document sequence.
type StepFailure struct {
	Step   string // which step failed, e.g. "link thought to author"
	Detail string // what was left inconsistent
	Err    error
}

// PartialError reports that a multi-document operation completed some but not
// all of its steps. It is distinct from the other kinds so callers and
// operators can trigger reconciliation; it must be logged, never swallowed.
type PartialError struct {
	Op    string // the aggregate operation, e.g. "delete user"
	Steps []StepFailure
}

func (e *PartialError) Error() string {
	parts := make([]string, 0, len(e.Steps))
	for _, s := range e.Steps {
		parts = append(parts, fmt.Sprintf("%s (%s): %v", s.Step, s.Detail, s.Err))
	}
	return fmt.Sprintf("%s partially failed: %s", e.Op, strings.Join(parts, "; "))
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsPartial reports whether err is a partial multi-step failure.
func IsPartial(err error) bool {
	var p *PartialError
	return errors.As(err, &p)
}

// HTTPStatus maps a classified error to the status the routing layer should
// return. Unclassified errors are treated as internal.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if IsPartial(err) {
		return http.StatusInternalServerError
	}
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Code returns a stable machine-readable code for the client payload.
func Code(err error) string {
	if IsPartial(err) {
		return "partial_failure"
	}
	var e *Error
	if !errors.As(err, &e) {
		return "internal_error"
	}
	switch e.Kind {
	case KindValidation:
		return "validation_error"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal_error"
	}
}
