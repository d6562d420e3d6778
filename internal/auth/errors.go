package auth

import (
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/models"
	pkghttp "github.com/BellSoftNetwork/ResortManagementSystem-sub001/pkg/http"
)

// WriteError translates authentication and token errors into HTTP responses.
// Anything outside the auth taxonomy is reported as an internal error.
func WriteError(w http.ResponseWriter, err error) {
	var tooMany *models.TooManyAttemptsError

	switch {
	case errors.As(err, &tooMany):
		pkghttp.WriteTooManyRequests(w, "too_many_attempts", tooManyMessage(tooMany), tooMany.RetryAfter)
	case errors.Is(err, models.ErrTooManyAttempts):
		pkghttp.WriteTooManyRequests(w, "too_many_attempts", "Too many login attempts. Please try again later.", 0)
	case errors.Is(err, models.ErrInvalidCredentials):
		pkghttp.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password")
	case errors.Is(err, models.ErrInvalidRefreshToken):
		pkghttp.WriteError(w, http.StatusUnauthorized, "invalid_refresh_token", "Refresh token is invalid or expired")
	case errors.Is(err, models.ErrExpiredAccessToken):
		pkghttp.WriteError(w, http.StatusUnauthorized, "expired_token", "Access token has expired")
	case errors.Is(err, models.ErrUnsupportedTokenAlgorithm):
		pkghttp.WriteError(w, http.StatusUnauthorized, "unsupported_token_algorithm", "Access token uses an unsupported signing algorithm")
	case errors.Is(err, models.ErrBadSignature):
		pkghttp.WriteError(w, http.StatusUnauthorized, "invalid_token_signature", "Access token signature is invalid")
	case errors.Is(err, models.ErrMalformedAccessToken):
		pkghttp.WriteError(w, http.StatusUnauthorized, "malformed_token", "Access token is malformed")
	case errors.Is(err, models.ErrUnauthorized):
		pkghttp.WriteUnauthorized(w, "Authentication required")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

func tooManyMessage(e *models.TooManyAttemptsError) string {
	minutes := int(math.Ceil(e.RetryAfter.Minutes()))
	if e.Scope == models.ScopeAddress {
		return fmt.Sprintf("Too many failed login attempts from this address. Please try again in %d minutes.", minutes)
	}
	return fmt.Sprintf("Too many login attempts. Please try again in %d minutes.", minutes)
}
