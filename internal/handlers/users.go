package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/models"
	pkgauth "github.com/BellSoftNetwork/ResortManagementSystem-sub001/pkg/auth"
	pkghttp "github.com/BellSoftNetwork/ResortManagementSystem-sub001/pkg/http"
)

// UserServiceInterface defines the account operations exposed over HTTP
type UserServiceInterface interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
}

// UserHandler handles account requests
type UserHandler struct {
	service UserServiceInterface
}

func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterRequest represents the request body for self-service registration.
// Usernames may not contain "@" because login treats such identifiers as email addresses.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,excludes=@"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of an account
type UserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Authorities []string  `json:"authorities"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Register handles self-service registration
// @Summary User registration
// @Accept json
// @Param request body RegisterRequest true "Register request"
// @Produce json
// @Success 201 {object} UserResponse
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 409 {object} pkghttp.ErrorResponse
// @Router /auth/register [post]
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		var policy *pkgauth.PasswordValidationError
		switch {
		case errors.As(err, &policy):
			pkghttp.WriteBadRequest(w, policy.Error())
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "Username or email is already registered")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Authorities: user.Authorities,
		CreatedAt:   user.CreatedAt,
	})
}
