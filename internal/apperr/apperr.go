// Package apperr is the error taxonomy shared by the domain service and the
// HTTP layer. Each Error carries the status code and the client-facing
// message; detail for server logs travels in the wrapped cause.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindInvalidToken
	KindAlreadyExists
	KindInvalidCredentials
	KindAlreadyLiked
	KindNotYetLiked
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidToken:
		return "invalid_token"
	case KindAlreadyExists:
		return "already_exists"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindAlreadyLiked:
		return "already_liked"
	case KindNotYetLiked:
		return "not_yet_liked"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// FieldError is a single failed input check.
type FieldError struct {
	Msg      string `json:"msg"`
	Param    string `json:"param,omitempty"`
	Location string `json:"location,omitempty"`
}

// Error is a classified failure.
type Error struct {
	Kind   Kind
	Status int
	Msg    string
	Fields []FieldError
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches another *Error of the same Kind, so sentinel-style checks like
// errors.Is(err, apperr.AlreadyLiked("")) work.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Listed reports whether the body should use the `{"errors":[...]}` shape.
func (e *Error) Listed() bool {
	switch e.Kind {
	case KindValidation, KindAlreadyExists, KindInvalidCredentials:
		return true
	}
	return false
}

// Validation builds a 400 error from field-level failures.
func Validation(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Msg: "validation failed", Fields: fields}
}

// NotFound builds a not-found error. status is 400 or 404 depending on the route.
func NotFound(status int, msg string) *Error {
	return &Error{Kind: KindNotFound, Status: status, Msg: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Status: http.StatusUnauthorized, Msg: msg}
}

func InvalidToken() *Error {
	return &Error{Kind: KindInvalidToken, Status: http.StatusUnauthorized, Msg: "Invalid Token"}
}

func AlreadyExists(msg string) *Error {
	return &Error{Kind: KindAlreadyExists, Status: http.StatusBadRequest, Msg: msg}
}

func InvalidCredentials() *Error {
	return &Error{Kind: KindInvalidCredentials, Status: http.StatusBadRequest, Msg: "Invalid Credentials"}
}

func AlreadyLiked(msg string) *Error {
	return &Error{Kind: KindAlreadyLiked, Status: http.StatusBadRequest, Msg: msg}
}

func NotYetLiked(msg string) *Error {
	return &Error{Kind: KindNotYetLiked, Status: http.StatusBadRequest, Msg: msg}
}

func Conflict(cause error) *Error {
	return &Error{
		Kind:   KindConflict,
		Status: http.StatusConflict,
		Msg:    "Resource was modified concurrently, please retry",
		cause:  cause,
	}
}

// Internal wraps an unexpected failure. The client only ever sees "Server Error".
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Msg: "Server Error", cause: cause}
}

// From classifies err: an *Error anywhere in the chain is returned as is,
// anything else becomes Internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
