package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/auth"
	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/models"
	pkghttp "github.com/BellSoftNetwork/ResortManagementSystem-sub001/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, identifier, password string, device models.DeviceInfo) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string, device models.DeviceInfo) (*models.TokenPair, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service  AuthServiceInterface
	ipConfig *pkghttp.IPConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		ipConfig: ipConfig,
	}
}

// Request DTOs

// LoginRequest represents the request body for login. Username may also be an email address.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest represents the request body for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Response DTOs

// TokenResponse is returned by login and refresh
type TokenResponse struct {
	AccessToken          string `json:"accessToken"`
	RefreshToken         string `json:"refreshToken"`
	AccessTokenExpiresIn int64  `json:"accessTokenExpiresIn"` // epoch milliseconds
}

// IdentityResponse describes the authenticated caller
type IdentityResponse struct {
	Subject     string   `json:"subject"`
	Authorities []string `json:"authorities"`
}

func toTokenResponse(pair *models.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:          pair.AccessToken,
		RefreshToken:         pair.RefreshToken,
		AccessTokenExpiresIn: pair.AccessTokenExpiresAt.UnixMilli(),
	}
}

// Login handles user login
// @Summary User login
// @Accept json
// @Param request body LoginRequest true "Login request"
// @Produce json
// @Success 200 {object} TokenResponse
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 401 {object} pkghttp.ErrorResponse
// @Failure 429 {object} pkghttp.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	device := auth.ExtractDeviceInfo(r, h.ipConfig)

	pair, err := h.service.Login(r.Context(), req.Username, req.Password, device)
	if err != nil {
		auth.WriteError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toTokenResponse(pair))
}

// Refresh rotates a refresh token into a new token pair
// @Summary Refresh tokens
// @Accept json
// @Param request body RefreshTokenRequest true "Refresh request"
// @Produce json
// @Success 200 {object} TokenResponse
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 401 {object} pkghttp.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	pair, err := h.service.Refresh(r.Context(), req.RefreshToken, auth.ExtractDeviceInfo(r, h.ipConfig))
	if err != nil {
		auth.WriteError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toTokenResponse(pair))
}

// Me returns the identity the authentication gate attached to the request
// @Summary Current identity
// @Produce json
// @Success 200 {object} IdentityResponse
// @Failure 401 {object} pkghttp.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := auth.GetIdentityFromContext(r.Context())
	if identity == nil {
		auth.WriteError(w, models.ErrUnauthorized)
		return
	}

	authorities := identity.Authorities
	if authorities == nil {
		authorities = []string{}
	}

	pkghttp.WriteJSON(w, http.StatusOK, IdentityResponse{
		Subject:     identity.Subject,
		Authorities: authorities,
	})
}
