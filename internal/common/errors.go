// Package common defines shared constants and sentinel errors used across
// client and server layers of MithaiMart. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors.
	ErrInternal           = errors.New("internal error")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDuplicateAccount   = errors.New("an account with this email already exists")
	ErrTooManyAttempts    = errors.New("too many login attempts, try again later")

	// Authorization errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Token errors (invalid or malformed token, expired token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Client-side errors.
	ErrNetwork           = errors.New("unable to reach the server, please try again")
	ErrSessionSuperseded = errors.New("session changed while the request was in flight")
)
