package errs

import (
	"errors"
	"fmt"
)

// ConflictError reports that Value is already taken for the unique Field.
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Field, e.Value)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// NotFoundError reports a missing record of kind Entity looked up by Key.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// StoreConflict is returned by repositories when a unique constraint rejects a write.
// Field is the logical column ("username", "email", "name").
type StoreConflict struct {
	Field string
}

func (e *StoreConflict) Error() string {
	return fmt.Sprintf("unique constraint on %s: %v", e.Field, ErrAlreadyExists)
}

func (e *StoreConflict) Unwrap() error { return ErrAlreadyExists }

// TokenReason classifies a token verification failure.
type TokenReason string

const (
	ReasonSignature TokenReason = "signature"
	ReasonExpired   TokenReason = "expired"
	ReasonMalformed TokenReason = "malformed"
)

// TokenError reports why a bearer token was rejected.
type TokenError struct {
	Reason TokenReason
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("%v: %s", ErrTokenInvalid, e.Reason)
}

func (e *TokenError) Unwrap() error { return ErrTokenInvalid }

// Validation wraps a human-readable message into an ErrValidation.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// AsConflict extracts a ConflictError from err.
func AsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// AsStoreConflict extracts a StoreConflict from err.
func AsStoreConflict(err error) (*StoreConflict, bool) {
	var sc *StoreConflict
	if errors.As(err, &sc) {
		return sc, true
	}
	return nil, false
}

// TokenFailure returns the reason of a TokenError wrapped in err, if any.
func TokenFailure(err error) (TokenReason, bool) {
	var te *TokenError
	if errors.As(err, &te) {
		return te.Reason, true
	}
	return "", false
}
