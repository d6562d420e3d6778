package models

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrBadRequest     = errors.New("bad request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInternalServer = errors.New("internal server error")

	// Login errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many login attempts")

	// Token errors
	ErrInvalidRefreshToken       = errors.New("invalid refresh token")
	ErrMalformedAccessToken      = errors.New("malformed access token")
	ErrExpiredAccessToken        = errors.New("expired access token")
	ErrUnsupportedTokenAlgorithm = errors.New("unsupported token algorithm")
	ErrBadSignature              = errors.New("bad token signature")
)

// Rejection scopes reported by the brute-force guard
const (
	ScopeAccount = "account"
	ScopeAddress = "address"
)

// TooManyAttemptsError is returned when the guard rejects a login.
// It matches ErrTooManyAttempts with errors.Is.
type TooManyAttemptsError struct {
	Scope      string
	RetryAfter time.Duration
}

func (e *TooManyAttemptsError) Error() string {
	return fmt.Sprintf("%s: %s limit reached, retry after %s", ErrTooManyAttempts, e.Scope, e.RetryAfter)
}

func (e *TooManyAttemptsError) Is(target error) bool {
	return target == ErrTooManyAttempts
}
