package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeMalformedToken indicates a bearer token that could not be decoded.
	ErrCodeMalformedToken ErrorCode = "malformed_token"
	// ErrCodeExpiredToken indicates a decodable token whose expiry has elapsed.
	ErrCodeExpiredToken ErrorCode = "expired_token"
	// ErrCodeMissingCredentials indicates a login attempt without email or password.
	ErrCodeMissingCredentials ErrorCode = "missing_credentials"
	// ErrCodeBackendUnreachable indicates the backend API could not be reached.
	ErrCodeBackendUnreachable ErrorCode = "backend_unreachable"
	// ErrCodeBackendStatus indicates the backend API answered with a non-2xx status.
	ErrCodeBackendStatus ErrorCode = "backend_status"
	// ErrCodeUnknownRole indicates a session whose role cannot be determined.
	ErrCodeUnknownRole ErrorCode = "unknown_role"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "internal"
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Status is the upstream HTTP status for ErrCodeBackendStatus errors.
	Status int
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// MalformedToken wraps a token decoding failure.
func MalformedToken(cause error) *AppError {
	return &AppError{Code: ErrCodeMalformedToken, Message: "malformed token", Cause: cause}
}

// ExpiredToken reports a token past its expiry.
func ExpiredToken() *AppError {
	return &AppError{Code: ErrCodeExpiredToken, Message: "token expired"}
}

// MissingCredentials reports an incomplete login form.
func MissingCredentials(message string) *AppError {
	return &AppError{Code: ErrCodeMissingCredentials, Message: message}
}

// BackendUnreachable wraps a transport failure talking to the backend API.
func BackendUnreachable(cause error) *AppError {
	return &AppError{Code: ErrCodeBackendUnreachable, Message: "backend unreachable", Cause: cause}
}

// BackendStatus reports a non-2xx backend response. message is the backend's own message when present.
func BackendStatus(status int, message string) *AppError {
	if message == "" {
		message = fmt.Sprintf("backend returned status %d", status)
	}
	return &AppError{Code: ErrCodeBackendStatus, Message: message, Status: status}
}

// UnknownRole reports a session whose role could not be resolved.
func UnknownRole() *AppError {
	return &AppError{Code: ErrCodeUnknownRole, Message: "session role could not be determined"}
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsMalformedToken checks if an error is a MalformedToken error.
func IsMalformedToken(err error) bool { return isCode(err, ErrCodeMalformedToken) }

// IsExpiredToken checks if an error is an ExpiredToken error.
func IsExpiredToken(err error) bool { return isCode(err, ErrCodeExpiredToken) }

// IsMissingCredentials checks if an error is a MissingCredentials error.
func IsMissingCredentials(err error) bool { return isCode(err, ErrCodeMissingCredentials) }

// IsBackendUnreachable checks if an error is a BackendUnreachable error.
func IsBackendUnreachable(err error) bool { return isCode(err, ErrCodeBackendUnreachable) }

// IsBackendStatus checks if an error is a BackendStatus error.
func IsBackendStatus(err error) bool { return isCode(err, ErrCodeBackendStatus) }

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// HTTPStatus maps an error to the status code handlers should answer with.
// Backend 4xx responses pass through; anything else from the backend is a bad gateway.
func HTTPStatus(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Code {
	case ErrCodeMissingCredentials, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeMalformedToken, ErrCodeExpiredToken, ErrCodeUnknownRole:
		return http.StatusUnauthorized
	case ErrCodeBackendUnreachable:
		return http.StatusBadGateway
	case ErrCodeBackendStatus:
		if appErr.Status >= 400 && appErr.Status < 500 {
			return appErr.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns text that is safe to show an end user for err.
// Transport details and internal failures are replaced with a generic message.
func UserMessage(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return "something went wrong, please try again"
	}
	switch appErr.Code {
	case ErrCodeBackendUnreachable:
		return "the server could not be reached, please try again later"
	case ErrCodeInternal:
		return "something went wrong, please try again"
	default:
		return appErr.Message
	}
}
