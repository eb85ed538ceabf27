// Package apierr is the in-process error taxonomy of the sync core.
// Remote failures are mapped into one of these kinds so callers can
// branch on errors.Is without string matching.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindAuth       Kind = "auth"
	KindForbidden  Kind = "forbidden"
	KindConflict   Kind = "conflict"
	KindTimeout    Kind = "timeout"
	KindTransport  Kind = "transport"
	KindInternal   Kind = "internal"
)

// Sentinels usable with errors.Is. Every *Error matches the sentinel
// of its kind.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrAuth       = errors.New("authentication failed")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrTimeout    = errors.New("timeout")
	ErrTransport  = errors.New("transport error")
	ErrInternal   = errors.New("internal error")
)

func sentinel(k Kind) error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindNotFound:
		return ErrNotFound
	case KindAuth:
		return ErrAuth
	case KindForbidden:
		return ErrForbidden
	case KindConflict:
		return ErrConflict
	case KindTimeout:
		return ErrTimeout
	case KindTransport:
		return ErrTransport
	}
	return ErrInternal
}

// Error is a classified failure. Code carries the server's wire error
// code when one was returned.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return sentinel(e.Kind)
}

// Is lets a *Error match both its kind sentinel and its cause chain.
func (e *Error) Is(target error) bool {
	return target == sentinel(e.Kind)
}

func New(k Kind, msg string) *Error { return &Error{Kind: k, Message: msg} }

func Wrap(k Kind, msg string, cause error) *Error {
	return &Error{Kind: k, Message: msg, Cause: cause}
}

func Validation(msg string) *Error { return New(KindValidation, msg) }
func NotFound(msg string) *Error   { return New(KindNotFound, msg) }
func Timeout(msg string, cause error) *Error {
	return Wrap(KindTimeout, msg, cause)
}

// KindFromStatus maps an HTTP status to a kind. 401 is a true auth
// failure; 403 is a permission denial and must not force re-login.
func KindFromStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuth
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return KindTimeout
	case status >= 400 && status < 500:
		return KindValidation
	default:
		return KindInternal
	}
}

// KindOf extracts the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
