package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/models"
	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/pkg/auth"
)

// Authority names
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// UserRepository defines the interface for credential subject access
type UserRepository interface {
	GetByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
}

// UserService manages credential subjects
type UserService struct {
	repo   UserRepository
	logger *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(repo UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

// EnsureAdmin creates the bootstrap administrator unless a subject named username
// already exists. It reports whether a user was created.
func (s *UserService) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	_, err := s.repo.GetByIdentifier(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return false, fmt.Errorf("look up admin user: %w", err)
	}

	created, err := s.create(ctx, username, email, password, []string{RoleAdmin, RoleUser})
	if err != nil {
		return false, fmt.Errorf("create admin user: %w", err)
	}

	s.logger.Info("admin user created", slog.String("user_id", created.ID), slog.String("username", created.Username))
	return true, nil
}

// Register creates a self-service account holding RoleUser. A password that fails
// the policy is returned as *auth.PasswordValidationError; a taken username or
// email as models.ErrConflict.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	created, err := s.create(ctx, username, email, password, []string{RoleUser})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.logger.Info("registration conflict", slog.String("username", username))
		}
		return nil, err
	}

	s.logger.Info("user registered", slog.String("user_id", created.ID), slog.String("username", created.Username))
	return created, nil
}

func (s *UserService) create(ctx context.Context, username, email, password string, authorities []string) (*models.User, error) {
	if err := auth.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Authorities:  authorities,
	})
}
