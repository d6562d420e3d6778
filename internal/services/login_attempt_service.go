package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/models"
	pkglogger "github.com/BellSoftNetwork/ResortManagementSystem-sub001/pkg/logger"
)

// addressThresholdFactor widens the per-address limit since one address spans many accounts
const addressThresholdFactor = 3

// LoginAttemptLedger defines the interface for the append-only attempt store
type LoginAttemptLedger interface {
	Record(ctx context.Context, subject, sourceAddress string, succeeded bool, device models.DeviceInfo) (*models.LoginAttempt, error)
	CountFailuresSinceLastSuccess(ctx context.Context, subject, sourceAddress string, windowStart time.Time) (int, error)
	CountFailuresSinceLastSuccessByAddress(ctx context.Context, sourceAddress string, windowStart time.Time) (int, error)
	LastSuccess(ctx context.Context, subject string) (*models.LoginAttempt, error)
}

// LoginAttemptConfig holds the guard thresholds
type LoginAttemptConfig struct {
	MaxAttempts int           // failures per subject and address before rejection
	Window      time.Duration // lookback when no success anchors the count
}

// LoginAttemptService is the brute-force guard in front of credential verification
type LoginAttemptService struct {
	ledger      LoginAttemptLedger
	config      LoginAttemptConfig
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewLoginAttemptService creates a new LoginAttemptService
func NewLoginAttemptService(ledger LoginAttemptLedger, config LoginAttemptConfig, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *LoginAttemptService {
	return &LoginAttemptService{
		ledger:      ledger,
		config:      config,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// CheckAttemptAllowed decides whether subject may attempt a login from device.
// It returns a *models.TooManyAttemptsError on rejection. Ledger errors are
// returned as-is so the caller fails closed.
func (s *LoginAttemptService) CheckAttemptAllowed(ctx context.Context, subject string, device models.DeviceInfo, now time.Time) error {
	windowStart := now.Add(-s.config.Window)

	combined, err := s.ledger.CountFailuresSinceLastSuccess(ctx, subject, device.SourceAddress, windowStart)
	if err != nil {
		s.logger.Error("failed to count login failures",
			slog.String("subject", subject),
			slog.String("source_address", device.SourceAddress),
			slog.Any("error", err))
		return fmt.Errorf("check login attempts: %w", err)
	}
	if combined >= s.config.MaxAttempts {
		return s.reject(models.ScopeAccount, subject, device, combined)
	}

	byAddress, err := s.ledger.CountFailuresSinceLastSuccessByAddress(ctx, device.SourceAddress, windowStart)
	if err != nil {
		s.logger.Error("failed to count login failures by address",
			slog.String("source_address", device.SourceAddress),
			slog.Any("error", err))
		return fmt.Errorf("check login attempts by address: %w", err)
	}
	if byAddress >= s.config.MaxAttempts*addressThresholdFactor {
		return s.reject(models.ScopeAddress, subject, device, byAddress)
	}

	return nil
}

func (s *LoginAttemptService) reject(scope, subject string, device models.DeviceInfo, failures int) error {
	s.logger.Warn("login rejected",
		slog.String("scope", scope),
		slog.String("subject", subject),
		slog.String("source_address", device.SourceAddress),
		slog.Int("failed_attempts", failures),
		slog.Duration("retry_after", s.config.Window))
	s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
		EventType:     pkglogger.EventLoginRejected,
		Subject:       subject,
		SourceAddress: device.SourceAddress,
		UserAgent:     device.UserAgent,
		FailureReason: "too_many_attempts",
		Metadata:      map[string]string{"scope": scope},
	})
	loginRejections.WithLabelValues(scope).Inc()

	return &models.TooManyAttemptsError{Scope: scope, RetryAfter: s.config.Window}
}

// DetectDeviceChange reports whether device differs from the one used on the
// subject's last successful login. The result is advisory and never blocks.
func (s *LoginAttemptService) DetectDeviceChange(ctx context.Context, subject string, device models.DeviceInfo) (bool, error) {
	last, err := s.ledger.LastSuccess(ctx, subject)
	if err != nil {
		return false, fmt.Errorf("load last successful login: %w", err)
	}
	if last == nil || last.DeviceFingerprint == nil || *last.DeviceFingerprint == device.Fingerprint {
		return false, nil
	}

	s.auditLogger.LogDeviceChange(subject, device.SourceAddress, device.OSLabel)
	loginDeviceChanges.Inc()
	return true, nil
}

// RecordAttempt appends the outcome of a credential check to the ledger
func (s *LoginAttemptService) RecordAttempt(ctx context.Context, subject string, device models.DeviceInfo, succeeded bool) error {
	if _, err := s.ledger.Record(ctx, subject, device.SourceAddress, succeeded, device); err != nil {
		s.logger.Error("failed to record login attempt",
			slog.String("subject", subject),
			slog.String("source_address", device.SourceAddress),
			slog.Any("error", err))
		return fmt.Errorf("record login attempt: %w", err)
	}

	recordAttemptMetric(succeeded)
	return nil
}
