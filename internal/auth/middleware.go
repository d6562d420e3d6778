package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/models"
)

const bearerPrefix = "Bearer "

// contextKey is a custom type for context keys
type contextKey string

const (
	// IdentityContextKey is the key for storing the caller identity in context
	IdentityContextKey contextKey = "identity"
	// authErrorContextKey holds why a presented token was not accepted
	authErrorContextKey contextKey = "auth_error"
)

// IdentityResolver verifies bearer tokens. *TokenManager implements it.
type IdentityResolver interface {
	Validate(token string) bool
	GetIdentity(accessToken string) (*models.Identity, error)
}

// Gate extracts the bearer token of every request outside bypassPaths and, when it
// validates, attaches the caller identity to the request context. Requests without a
// valid token continue unauthenticated; RequireAuthenticated rejects them downstream.
// An identity resolution failure after a successful Validate is written by WriteError.
func Gate(resolver IdentityResolver, bypassPaths ...string) func(next http.Handler) http.Handler {
	bypass := make(map[string]struct{}, len(bypassPaths))
	for _, p := range bypassPaths {
		bypass[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := bypass[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !resolver.Validate(token) {
				// Keep the reason so the 401 downstream can say why
				_, reason := resolver.GetIdentity(token)
				ctx := context.WithValue(r.Context(), authErrorContextKey, reason)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			identity, err := resolver.GetIdentity(token)
			if err != nil {
				WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireAuthenticated rejects requests the Gate did not authenticate
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetIdentityFromContext(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}

		if reason, ok := r.Context().Value(authErrorContextKey).(error); ok && reason != nil {
			WriteError(w, reason)
			return
		}
		WriteError(w, models.ErrUnauthorized)
	})
}

// bearerToken returns the token of a case-sensitive "Bearer " Authorization header, or ""
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

// WithIdentity returns a copy of ctx carrying identity
func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, identity)
}

// GetIdentityFromContext returns the authenticated caller, or nil
func GetIdentityFromContext(ctx context.Context) *models.Identity {
	identity, ok := ctx.Value(IdentityContextKey).(*models.Identity)
	if !ok {
		return nil
	}
	return identity
}
