// Package apperrors is the typed error taxonomy shared by the store boundary,
// the services and the HTTP layer.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error.
type Kind string

const (
	KindValidation         Kind = "VALIDATION"
	KindAuthorization      Kind = "AUTHORIZATION"
	KindConflict           Kind = "CONFLICT"
	KindNotFound           Kind = "NOT_FOUND"
	KindTransactionFailure Kind = "TRANSACTION_FAILURE"
	KindInternal           Kind = "INTERNAL"
)

// Error is a classified error carrying the field path it refers to.
type Error struct {
	Kind    Kind
	Path    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, apperrors.ErrConflict) works.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinels for errors.Is.
var (
	ErrValidation         = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrAuthorization      = &Error{Kind: KindAuthorization, Message: "not allowed"}
	ErrConflict           = &Error{Kind: KindConflict, Message: "already exists"}
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "not found"}
	ErrTransactionFailure = &Error{Kind: KindTransactionFailure, Message: "transaction failed"}
)

func Validation(path, message string) *Error {
	return &Error{Kind: KindValidation, Path: path, Message: message}
}

func Authorization(path, message string) *Error {
	return &Error{Kind: KindAuthorization, Path: path, Message: message}
}

func Conflict(path, message string, err error) *Error {
	return &Error{Kind: KindConflict, Path: path, Message: message, Err: err}
}

func NotFound(path, message string, err error) *Error {
	return &Error{Kind: KindNotFound, Path: path, Message: message, Err: err}
}

func TransactionFailure(err error) *Error {
	return &Error{Kind: KindTransactionFailure, Message: "could not save changes, nothing was applied", Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "something went wrong", Err: err}
}

// KindOf returns the kind of err, KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// WithPath returns a copy of err attached to path when err is an *Error without one.
func WithPath(err error, path string) error {
	var e *Error
	if !errors.As(err, &e) || e.Path != "" {
		return err
	}
	cp := *e
	cp.Path = path
	return &cp
}

// WithMessage returns a copy of err of the given kind with a user-facing message.
// Errors of other kinds pass through untouched.
func WithMessage(err error, kind Kind, path, message string) error {
	var e *Error
	if !errors.As(err, &e) || e.Kind != kind {
		return err
	}
	return &Error{Kind: kind, Path: path, Message: message, Err: e.Err}
}

// HTTPStatus maps an error to the status code used by the handlers.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
