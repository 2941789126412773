package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound         = errors.New("resource not found")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidState     = errors.New("invalid state")
	ErrLimitExceeded    = errors.New("limit exceeded")
	ErrValidationFailed = errors.New("validation failed")
	ErrAlreadyExists    = errors.New("resource already exists")
	ErrInternal         = errors.New("internal error")
)

// Stable error kinds exposed to API clients.
const (
	KindNotFound         = "NOT_FOUND"
	KindForbidden        = "FORBIDDEN"
	KindUnauthorized     = "UNAUTHORIZED"
	KindInvalidState     = "INVALID_STATE"
	KindLimitExceeded    = "LIMIT_EXCEEDED"
	KindValidationFailed = "VALIDATION_FAILED"
	KindConflict         = "CONFLICT"
	KindInternal         = "INTERNAL"
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, KindNotFound, message, ErrNotFound)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, KindForbidden, message, ErrForbidden)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, KindUnauthorized, message, ErrUnauthorized)
}

func InvalidState(message string) *AppError {
	return NewAppError(http.StatusConflict, KindInvalidState, message, ErrInvalidState)
}

func LimitExceeded(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, KindLimitExceeded, message, ErrLimitExceeded)
}

func ValidationFailed(message string) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, KindValidationFailed, message, ErrValidationFailed)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, KindConflict, message, ErrAlreadyExists)
}

// InternalError hides err from the client message but keeps it for logging.
func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, KindInternal, "internal server error", errors.Join(ErrInternal, err))
}

// KindOf maps any error to its stable kind. Unknown errors are INTERNAL.
func KindOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrLimitExceeded):
		return KindLimitExceeded
	case errors.Is(err, ErrValidationFailed):
		return KindValidationFailed
	case errors.Is(err, ErrAlreadyExists):
		return KindConflict
	}
	return KindInternal
}

// StatusOf returns the HTTP status for err.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInvalidState, KindConflict:
		return http.StatusConflict
	case KindLimitExceeded:
		return http.StatusTooManyRequests
	case KindValidationFailed:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
