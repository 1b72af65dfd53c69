// Package common defines shared sentinel errors used across the server
// layers of seedvest. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already in use")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Session-manager errors. ErrInvalidCredentials deliberately covers both
	// "unknown email" and "wrong password" so responses do not reveal which
	// emails are registered. ErrInvalidToken covers malformed, expired,
	// badly signed, rotated-out and no-active-session refresh tokens.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)
