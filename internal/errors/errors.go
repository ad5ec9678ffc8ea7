package errors

import (
	"errors"
	"fmt"
)

// ErrorCode is a stable identifier for a failure class. The values double as
// the `msg` field of the legacy wire format, so they stay lowercase snake case.
type ErrorCode string

const (
	// Issuance
	ErrCodeInvalidProvider ErrorCode = "invalid_type"

	// Lookup
	ErrCodeNotValid         ErrorCode = "code_not_valid"
	ErrCodeNotAuthenticated ErrorCode = "code_not_authenticated"

	// Exchange
	ErrCodeInvalidDeviceCode ErrorCode = "invalid_device_code"
	ErrCodeExchangeFailed    ErrorCode = "exchange_failed"

	// Request validation
	ErrCodeMissingParams     ErrorCode = "missing_params"
	ErrCodeUnauthenticated   ErrorCode = "request_unauthenticated"
	ErrCodeMalformedCallback ErrorCode = "malformed_callback"

	// Internal
	ErrCodeInternal ErrorCode = "internal_error"
	ErrCodeDatabase ErrorCode = "database_error"
)

// AppError is a structured error carrying a wire-visible code.
type AppError struct {
	Code    ErrorCode
	Message string
	cause   error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.cause
}

func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Common error constructors

func InvalidProvider(provider string) *AppError {
	return New(ErrCodeInvalidProvider, fmt.Sprintf("unknown provider %q", provider))
}

func NotValid() *AppError {
	return New(ErrCodeNotValid, "pairing code not valid")
}

func NotAuthenticated() *AppError {
	return New(ErrCodeNotAuthenticated, "pairing code not authenticated")
}

func InvalidDeviceCode() *AppError {
	return New(ErrCodeInvalidDeviceCode, "device code does not match pairing")
}

func ExchangeFailed(upstream string) *AppError {
	return New(ErrCodeExchangeFailed, upstream)
}

func MissingParams() *AppError {
	return New(ErrCodeMissingParams, "required parameters missing")
}

func Unauthenticated() *AppError {
	return New(ErrCodeUnauthenticated, "client secret mismatch")
}

func MalformedCallback(reason string) *AppError {
	return New(ErrCodeMalformedCallback, reason)
}

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

func Database(cause error) *AppError {
	return Wrap(ErrCodeDatabase, "database error", cause)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetCode returns the error code, falling back to ErrCodeInternal for
// untyped errors.
func GetCode(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}
