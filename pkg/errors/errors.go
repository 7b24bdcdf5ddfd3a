package errors

import "net/http"

// Kind classifies an AppError so callers can branch on the failure class
// without parsing messages.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindInvalidState Kind = "invalid_state"
	KindValidation   Kind = "validation"
	KindInternal     Kind = "internal"
)

// AppError is a structured error carrying an HTTP status code and a taxonomy kind
type AppError struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// NewAppError creates a new AppError
func NewAppError(code int, kind Kind, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// Helper functions to create specific errors
func NotFound(msg string) *AppError {
	return NewAppError(http.StatusNotFound, KindNotFound, msg)
}

func Forbidden(msg string) *AppError {
	return NewAppError(http.StatusForbidden, KindForbidden, msg)
}

// InvalidState marks a transition that is illegal from the current state
// (submitting a quest that was never accepted, reopening an opened crate, ...).
func InvalidState(msg string) *AppError {
	return NewAppError(http.StatusConflict, KindInvalidState, msg)
}

func Validation(msg string) *AppError {
	return NewAppError(http.StatusBadRequest, KindValidation, msg)
}

func Internal(msg string) *AppError {
	return NewAppError(http.StatusInternalServerError, KindInternal, msg)
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Kind == kind
}
