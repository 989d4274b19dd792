package core

import "fmt"

type ErrorCode string

const (
	ErrBadRequest         ErrorCode = "WSO_BAD_REQUEST"
	ErrNotFound           ErrorCode = "WSO_NOT_FOUND"
	ErrConflict           ErrorCode = "WSO_CONFLICT"
	ErrPreconditionFailed ErrorCode = "WSO_PRECONDITION_FAILED"
	ErrTooManyRequests    ErrorCode = "WSO_TOO_MANY_REQUESTS"
	ErrUpstream           ErrorCode = "WSO_UPSTREAM"
	ErrInternal           ErrorCode = "WSO_INTERNAL"
)

// HTTPStatus returns the HTTP status code for this error code.
func (e ErrorCode) HTTPStatus() int {
	switch e {
	case ErrBadRequest:
		return 400
	case ErrNotFound:
		return 404
	case ErrConflict:
		return 409
	case ErrPreconditionFailed:
		return 412
	case ErrTooManyRequests:
		return 429
	case ErrUpstream:
		return 502
	default:
		return 500
	}
}

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code ErrorCode, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}
