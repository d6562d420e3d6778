package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/auth"
	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/models"
	pkgauth "github.com/BellSoftNetwork/ResortManagementSystem-sub001/pkg/auth"
	pkglogger "github.com/BellSoftNetwork/ResortManagementSystem-sub001/pkg/logger"
)

// AuthService handles login and token refresh
type AuthService struct {
	users       UserRepository
	guard       *LoginAttemptService
	tm          *auth.TokenManager
	delay       *auth.FailureDelay
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	now         func() time.Time
}

// NewAuthService creates a new AuthService. delay may be nil.
func NewAuthService(users UserRepository, guard *LoginAttemptService, tm *auth.TokenManager, delay *auth.FailureDelay, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		users:       users,
		guard:       guard,
		tm:          tm,
		delay:       delay,
		logger:      logger,
		auditLogger: auditLogger,
		now:         time.Now,
	}
}

// SetClock overrides the clock the guard window is measured against
func (s *AuthService) SetClock(now func() time.Time) {
	s.now = now
}

// Login authenticates identifier (username or email) with password from device.
// Rejections by the guard are not recorded, nor are empty or oversized identifiers.
// Unknown identifiers and wrong passwords are recorded as failures and reported as models.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, identifier, password string, device models.DeviceInfo) (*models.TokenPair, error) {
	started := time.Now()

	if identifier = strings.TrimSpace(identifier); identifier == "" {
		s.logger.Warn("login attempt with empty identifier", slog.String("source_address", device.SourceAddress))
		return nil, models.ErrInvalidCredentials
	}
	if utf8.RuneCountInString(identifier) > models.MaxSubjectLength {
		s.logger.Warn("login attempt with oversized identifier", slog.String("source_address", device.SourceAddress))
		return nil, models.ErrInvalidCredentials
	}

	if err := s.guard.CheckAttemptAllowed(ctx, identifier, device, s.now()); err != nil {
		return nil, err
	}

	if _, err := s.guard.DetectDeviceChange(ctx, identifier, device); err != nil {
		s.logger.Error("device change check failed", slog.String("subject", identifier), slog.Any("error", err))
		return nil, err
	}

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to look up credential subject", slog.String("subject", identifier), slog.Any("error", err))
		return nil, fmt.Errorf("look up credential subject: %w", err)
	}

	verified := false
	if user != nil {
		verified, err = pkgauth.VerifyPassword(user.PasswordHash, password)
		if err != nil {
			// Not a bad password: a system fault, left out of the ledger
			s.logger.Error("credential verification failed", slog.String("subject", identifier), slog.Any("error", err))
			return nil, fmt.Errorf("verify credential: %w", err)
		}
	}

	if err := s.guard.RecordAttempt(ctx, identifier, device, verified); err != nil {
		return nil, err
	}

	if !verified {
		reason := "invalid_password"
		if user == nil {
			reason = "unknown_subject"
		}
		s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
			EventType:     pkglogger.EventLogin,
			Subject:       identifier,
			SourceAddress: device.SourceAddress,
			UserAgent:     device.UserAgent,
			FailureReason: reason,
		})
		s.delay.WaitFrom(started)
		return nil, models.ErrInvalidCredentials
	}

	pair, err := s.tm.Issue(user.ID, user.Authorities, device.Fingerprint)
	if err != nil {
		s.logger.Error("failed to issue tokens", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
		EventType:     pkglogger.EventLogin,
		Subject:       identifier,
		SourceAddress: device.SourceAddress,
		UserAgent:     device.UserAgent,
		Success:       true,
		Metadata:      map[string]string{"user_id": user.ID},
	})

	return pair, nil
}

// Refresh rotates refreshToken into a new pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, device models.DeviceInfo) (*models.TokenPair, error) {
	pair, err := s.tm.Refresh(ctx, strings.TrimSpace(refreshToken), device)
	if err != nil {
		s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
			EventType:     pkglogger.EventTokenRefresh,
			SourceAddress: device.SourceAddress,
			UserAgent:     device.UserAgent,
			FailureReason: refreshFailureReason(err),
		})
		return nil, err
	}

	s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
		EventType:     pkglogger.EventTokenRefresh,
		SourceAddress: device.SourceAddress,
		UserAgent:     device.UserAgent,
		Success:       true,
	})
	return pair, nil
}

func refreshFailureReason(err error) string {
	if errors.Is(err, models.ErrInvalidRefreshToken) {
		return "invalid_refresh_token"
	}
	return "internal_error"
}
