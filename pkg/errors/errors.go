package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	ErrUnknownEntity
	ErrUnknownRole
	ErrValidation
	ErrStorageConflict
	ErrNoActiveKey
	ErrKeyUnavailable
	ErrDecryptionFailed
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// CodeOf extracts the application error code from err, walking the wrap chain.
func CodeOf(err error) (ErrorCode, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return 0, false
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

// Error constructors

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: message,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

func UnknownEntity(name string) *AppError {
	return &AppError{
		Code:    ErrUnknownEntity,
		Message: fmt.Sprintf("unknown entity %q", name),
	}
}

func UnknownRole(role string) *AppError {
	return &AppError{
		Code:    ErrUnknownRole,
		Message: fmt.Sprintf("unknown role %q", role),
	}
}

func Validation(message string, err error) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
		Err:     err,
	}
}

func StorageConflict(message string, err error) *AppError {
	return &AppError{
		Code:    ErrStorageConflict,
		Message: message,
		Err:     err,
	}
}

func NoActiveKey() *AppError {
	return &AppError{
		Code:    ErrNoActiveKey,
		Message: "no active encryption key",
	}
}

func KeyUnavailable(keyID int64) *AppError {
	return &AppError{
		Code:    ErrKeyUnavailable,
		Message: fmt.Sprintf("encryption key %d is unavailable", keyID),
	}
}

func DecryptionFailed(err error) *AppError {
	return &AppError{
		Code:    ErrDecryptionFailed,
		Message: "alias payload decryption failed",
		Err:     err,
	}
}
