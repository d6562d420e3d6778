package auth_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/auth"
	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/models"
	pkghttp "github.com/BellSoftNetwork/ResortManagementSystem-sub001/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockIdentityResolver implements auth.IdentityResolver for testing
type MockIdentityResolver struct {
	ValidateFunc    func(token string) bool
	GetIdentityFunc func(token string) (*models.Identity, error)
}

func (m *MockIdentityResolver) Validate(token string) bool {
	return m.ValidateFunc(token)
}

func (m *MockIdentityResolver) GetIdentity(token string) (*models.Identity, error) {
	return m.GetIdentityFunc(token)
}

// recordingHandler captures the identity seen downstream of the gate
type recordingHandler struct {
	called   bool
	identity *models.Identity
}

func (h *recordingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.identity = auth.GetIdentityFromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

func serveGate(t *testing.T, resolver auth.IdentityResolver, path, authorization string, protect bool) (*httptest.ResponseRecorder, *recordingHandler) {
	t.Helper()
	next := &recordingHandler{}
	var handler http.Handler = next
	if protect {
		handler = auth.RequireAuthenticated(handler)
	}
	handler = auth.Gate(resolver, "/api/v1/auth/login", "/api/v1/auth/refresh")(handler)

	req := httptest.NewRequest("GET", path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w, next
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp pkghttp.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestGate_ValidTokenAttachesIdentity(t *testing.T) {
	tm, _ := newTestTokenManager(nil)
	pair, err := tm.Issue("user-1", []string{"ROLE_USER"}, "fp")
	require.NoError(t, err)

	w, next := serveGate(t, tm, "/api/v1/auth/me", "Bearer "+pair.AccessToken, true)

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, next.called)
	require.NotNil(t, next.identity)
	assert.Equal(t, "user-1", next.identity.Subject)
}

func TestGate_MissingOrForeignSchemeIsUnauthenticated(t *testing.T) {
	tm, _ := newTestTokenManager(nil)
	pair, err := tm.Issue("user-1", []string{"ROLE_USER"}, "fp")
	require.NoError(t, err)

	for _, header := range []string{"", "bearer " + pair.AccessToken, "Basic dXNlcjpwYXNz", "Bearer"} {
		t.Run(header, func(t *testing.T) {
			// Unprotected route: passes through without identity
			w, next := serveGate(t, tm, "/api/v1/rooms", header, false)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.True(t, next.called)
			assert.Nil(t, next.identity)

			// Protected route: rejected downstream
			w, next = serveGate(t, tm, "/api/v1/auth/me", header, true)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.False(t, next.called)
			assert.Equal(t, "unauthorized", errorCode(t, w))
		})
	}
}

func TestGate_InvalidTokenReasonReachesResponse(t *testing.T) {
	tm, clock := newTestTokenManager(nil)
	pair, err := tm.Issue("user-1", []string{"ROLE_USER"}, "fp")
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)

	w, next := serveGate(t, tm, "/api/v1/auth/me", "Bearer "+pair.AccessToken, true)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, next.called)
	assert.Equal(t, "expired_token", errorCode(t, w))

	w, _ = serveGate(t, tm, "/api/v1/auth/me", "Bearer not.a.jwt", true)
	assert.Equal(t, "malformed_token", errorCode(t, w))
}

func TestGate_BypassesLoginAndRefresh(t *testing.T) {
	resolver := &MockIdentityResolver{
		ValidateFunc: func(token string) bool {
			t.Fatal("gate must not inspect tokens on pre-auth endpoints")
			return false
		},
	}

	for _, path := range []string{"/api/v1/auth/login", "/api/v1/auth/refresh"} {
		w, next := serveGate(t, resolver, path, "Bearer whatever", false)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, next.called)
	}
}

func TestGate_RefreshTokenAsBearerIsRejected(t *testing.T) {
	tm, _ := newTestTokenManager(nil)
	pair, err := tm.Issue("user-1", []string{"ROLE_USER"}, "fp")
	require.NoError(t, err)

	w, next := serveGate(t, tm, "/api/v1/rooms", "Bearer "+pair.RefreshToken, false)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, next.called)
	assert.Equal(t, "malformed_token", errorCode(t, w))
}

func TestGate_ResolutionFaultIsTranslated(t *testing.T) {
	resolver := &MockIdentityResolver{
		ValidateFunc: func(token string) bool { return true },
		GetIdentityFunc: func(token string) (*models.Identity, error) {
			return nil, errors.New("unexpected claim shape")
		},
	}

	w, next := serveGate(t, resolver, "/api/v1/rooms", "Bearer token", false)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, next.called)
}
