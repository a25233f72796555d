// Package common defines shared constants and sentinel errors used across
// client and server layers of gophtasks. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors. Concrete messages are wrapped around ErrorValidation.
	ErrorValidation = errors.New("validation error")

	// ErrInvalidInput is returned for arguments a caller must never pass,
	// e.g. an empty claim set or an empty password.
	ErrInvalidInput = errors.New("invalid input")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")
)
