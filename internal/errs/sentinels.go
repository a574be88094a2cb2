// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a write would violate a uniqueness invariant.
	ErrConflict = errors.New("conflict")

	// ErrAlreadyExists indicates a unique constraint violation reported by the store.
	ErrAlreadyExists = errors.New("already exists")

	// ErrAuthenticationFailed is returned for every failed login. It deliberately carries
	// no detail: unknown user and wrong password are indistinguishable to the caller.
	ErrAuthenticationFailed = errors.New("invalid credentials")

	// ErrTokenInvalid indicates a bearer token failed verification.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation")
)
