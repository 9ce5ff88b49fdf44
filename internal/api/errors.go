// internal/api/errors.go
//
// Tagged request errors.
//
// Context
// -------
// Handlers never write error bodies themselves.  They return an error and
// the boundary (HandlerFunc, Recover, the router fallbacks) maps it onto
// one of three envelopes:
//
//   • *Error{Kind: KindHTTP}        → http_exception, status echoed
//   • *Error{Kind: KindValidation}  → validation_error, 422, per-field details
//   • anything else                 → internal_error, 500, no detail leaked
//
// Notes
// -----
// • The wrapped cause of an internal error is logged, never serialised.
package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind tags an Error with its response class.
type Kind int

const (
	KindInternal Kind = iota
	KindHTTP
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindHTTP:
		return "http_exception"
	case KindValidation:
		return "validation_error"
	default:
		return "internal_error"
	}
}

// FieldError is one entry of a validation_error "details" array.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// Error is the tagged error handlers return.  Zero value is an internal
// error.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Details []FieldError
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	case KindValidation:
		return fmt.Sprintf("validation failed: %d field(s)", len(e.Details))
	default:
		if e.Err != nil {
			return "internal: " + e.Err.Error()
		}
		return "internal error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPError builds an http_exception.  An empty msg falls back to the
// status text, e.g. 404 → "Not Found".
func HTTPError(status int, msg string) *Error {
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Kind: KindHTTP, Status: status, Message: msg}
}

// NotFoundError is a shorthand for HTTPError(404, "").
func NotFoundError() *Error { return HTTPError(http.StatusNotFound, "") }

// ValidationError builds a validation_error with the given details.
func ValidationError(details ...FieldError) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusUnprocessableEntity, Details: details}
}

// Internal wraps err so the boundary logs it as an unexpected failure.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Err: err}
}

// classify returns the tagged view of any error.
func classify(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case KindHTTP:
			if e.Status < 400 || e.Status > 599 {
				return &Error{Kind: KindHTTP, Status: http.StatusInternalServerError, Message: e.Message, Err: e.Err}
			}
			return e
		case KindValidation:
			return e
		}
		if e.Err != nil {
			return Internal(e.Err)
		}
	}
	return Internal(err)
}
