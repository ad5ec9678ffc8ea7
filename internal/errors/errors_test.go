package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("Error returns formatted string", func(t *testing.T) {
		err := New(ErrCodeNotValid, "pairing code not valid")
		assert.Equal(t, "code_not_valid: pairing code not valid", err.Error())
	})

	t.Run("Error with cause includes cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(ErrCodeDatabase, "database error", cause)
		assert.Contains(t, err.Error(), "database_error")
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("WithCause is unwrappable", func(t *testing.T) {
		cause := errors.New("row gone")
		err := NotValid().WithCause(cause)
		assert.ErrorIs(t, err, cause)
	})
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name         string
		constructor  func() *AppError
		expectedCode ErrorCode
	}{
		{"InvalidProvider", func() *AppError { return InvalidProvider("mega") }, ErrCodeInvalidProvider},
		{"NotValid", func() *AppError { return NotValid() }, ErrCodeNotValid},
		{"NotAuthenticated", func() *AppError { return NotAuthenticated() }, ErrCodeNotAuthenticated},
		{"InvalidDeviceCode", func() *AppError { return InvalidDeviceCode() }, ErrCodeInvalidDeviceCode},
		{"ExchangeFailed", func() *AppError { return ExchangeFailed(`{"error":"invalid_grant"}`) }, ErrCodeExchangeFailed},
		{"MissingParams", func() *AppError { return MissingParams() }, ErrCodeMissingParams},
		{"Unauthenticated", func() *AppError { return Unauthenticated() }, ErrCodeUnauthenticated},
		{"MalformedCallback", func() *AppError { return MalformedCallback("no state") }, ErrCodeMalformedCallback},
		{"Internal", func() *AppError { return Internal("test") }, ErrCodeInternal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.constructor()
			assert.Equal(t, tc.expectedCode, err.Code)
			assert.NotEmpty(t, err.Message)
		})
	}
}

func TestGetCode(t *testing.T) {
	t.Run("returns code for AppError", func(t *testing.T) {
		assert.Equal(t, ErrCodeNotValid, GetCode(NotValid()))
	})

	t.Run("sees through wrapping", func(t *testing.T) {
		err := fmt.Errorf("handling request: %w", NotAuthenticated())
		assert.Equal(t, ErrCodeNotAuthenticated, GetCode(err))
	})

	t.Run("falls back to internal for untyped errors", func(t *testing.T) {
		assert.Equal(t, ErrCodeInternal, GetCode(errors.New("boom")))
	})
}

func TestAsAppError(t *testing.T) {
	t.Run("extracts AppError", func(t *testing.T) {
		original := Database(errors.New("down"))
		extracted, ok := AsAppError(original)
		assert.True(t, ok)
		assert.Equal(t, original, extracted)
	})

	t.Run("returns false for non-AppError", func(t *testing.T) {
		extracted, ok := AsAppError(errors.New("standard error"))
		assert.False(t, ok)
		assert.Nil(t, extracted)
	})
}
