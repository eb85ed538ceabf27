package common

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
)

// Wire error codes shared by the shop service and the client's error
// mapping.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeTimeout      = "timeout"
	ErrCodeInternal     = "internal_error"
)

// ErrorResponse harmonized HTTP error schema.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// RequestIDKey for context retrieval in handlers and middleware.
const RequestIDKey = "request_id"

// MapErrorCodeToHTTP maps wire error codes to HTTP status.
func MapErrorCodeToHTTP(code string) int {
	switch code {
	case ErrCodeBadRequest:
		return 400
	case ErrCodeUnauthorized:
		return 401
	case ErrCodeForbidden:
		return 403
	case ErrCodeNotFound:
		return 404
	case ErrCodeConflict:
		return 409
	case ErrCodeTimeout:
		return 408
	default:
		return 500
	}
}

// WriteError converts an error code + message to the HTTP JSON schema.
func WriteError(c context.Context, ctx *app.RequestContext, status int, code, msg string) {
	rid := ""
	if v, ok := ctx.Get(RequestIDKey); ok {
		switch vv := v.(type) {
		case string:
			rid = vv
		case []byte:
			rid = string(vv)
		}
	}
	if status == 0 {
		status = MapErrorCodeToHTTP(code)
	}
	ctx.SetStatusCode(status)
	ctx.JSON(status, ErrorResponse{Code: code, Message: msg, RequestID: rid})
}
