package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is an error that maps to an HTTP status and a stable code
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// WithMessage returns a copy of e carrying message
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{Code: e.Code, Message: message, Status: e.Status}
}

// Error codes
const (
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeSessionExpired     = "SESSION_EXPIRED"
	ErrCodeAuthRequired       = "AUTH_REQUIRED"
	ErrCodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	ErrCodeBackendError       = "BACKEND_ERROR"
	ErrCodeSessionStore       = "SESSION_STORE_ERROR"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
)

// NewAppError creates a new application error
func NewAppError(code, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

// As returns the AppError in err's chain, if any
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Common errors
var (
	ErrInvalidCredentials = NewAppError(ErrCodeInvalidCredentials, "Invalid email or password", http.StatusUnauthorized)
	ErrInvalidToken       = NewAppError(ErrCodeInvalidToken, "Backend returned an unusable token", http.StatusBadGateway)
	ErrSessionExpired     = NewAppError(ErrCodeSessionExpired, "Session expired, please log in again", http.StatusUnauthorized)
	ErrAuthRequired       = NewAppError(ErrCodeAuthRequired, "Authentication required", http.StatusUnauthorized)
	ErrBackendUnavailable = NewAppError(ErrCodeBackendUnavailable, "Backend is unreachable", http.StatusBadGateway)
	ErrBackendError       = NewAppError(ErrCodeBackendError, "Backend request failed", http.StatusBadGateway)
	ErrSessionStore       = NewAppError(ErrCodeSessionStore, "Failed to persist session", http.StatusInternalServerError)
	ErrForbidden          = NewAppError(ErrCodeForbidden, "Not allowed for this account", http.StatusForbidden)
	ErrNotFound           = NewAppError(ErrCodeNotFound, "Not found", http.StatusNotFound)
)
