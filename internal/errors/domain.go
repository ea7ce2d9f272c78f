// Package errors defines the error types shared by services and the HTTP layer.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies a DomainError for the HTTP boundary.
type Kind int

const (
	KindBusiness Kind = iota
	KindNotFound
	KindForbidden
	KindUnauthorized
)

// DomainError is a sentinel error carrying a stable code and a client-safe message.
type DomainError struct {
	Code    string
	Message string
	Kind    Kind
}

func (e *DomainError) Error() string {
	return e.Message
}

// Status maps the error kind to an HTTP status code.
func (e *DomainError) Status() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}

// WithMessage returns a copy with a more specific message. errors.Is still
// matches the original sentinel.
func (e *DomainError) WithMessage(format string, args ...interface{}) error {
	return &detailedError{base: e, msg: fmt.Sprintf(format, args...)}
}

type detailedError struct {
	base *DomainError
	msg  string
}

func (d *detailedError) Error() string { return d.msg }
func (d *detailedError) Unwrap() error { return d.base }

// Business returns a 400-class sentinel.
func Business(code, msg string) *DomainError {
	return &DomainError{Code: code, Message: msg, Kind: KindBusiness}
}

// NotFound returns a 404-class sentinel.
func NotFound(code, msg string) *DomainError {
	return &DomainError{Code: code, Message: msg, Kind: KindNotFound}
}

// Forbidden returns a 403-class sentinel.
func Forbidden(code, msg string) *DomainError {
	return &DomainError{Code: code, Message: msg, Kind: KindForbidden}
}

// Unauthorized returns a 401-class sentinel.
func Unauthorized(code, msg string) *DomainError {
	return &DomainError{Code: code, Message: msg, Kind: KindUnauthorized}
}

// ValidationError reports per-field input problems (422).
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError creates an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// Field builds a ValidationError with a single message.
func Field(field, message string) *ValidationError {
	v := NewValidationError()
	v.Add(field, message)
	return v
}

// Add appends a message for field.
func (v *ValidationError) Add(field, message string) {
	v.Fields[field] = append(v.Fields[field], message)
}

// Empty reports whether no field errors were recorded.
func (v *ValidationError) Empty() bool {
	return len(v.Fields) == 0
}

// OrNil returns v as an error, or nil when there is nothing to report.
func (v *ValidationError) OrNil() error {
	if v == nil || v.Empty() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(v.Fields[k], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsDomain unwraps err to a DomainError if it is one.
func AsDomain(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// AsValidation unwraps err to a ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Shared sentinels used by more than one service.
var (
	ErrAdminOnly    = Forbidden("ADMIN_ONLY", "Unauthorized. Admin access required.")
	ErrUserNotFound = NotFound("USER_NOT_FOUND", "user not found")
)
