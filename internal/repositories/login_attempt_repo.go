package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LoginAttemptRepository is the append-only login attempt ledger
type LoginAttemptRepository struct {
	db  DBTX
	now func() time.Time
}

// NewLoginAttemptRepository creates a new LoginAttemptRepository
func NewLoginAttemptRepository(db DBTX) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db, now: time.Now}
}

// SetClock overrides the clock used to timestamp recorded attempts
func (r *LoginAttemptRepository) SetClock(now func() time.Time) {
	r.now = now
}

// Record appends one attempt to the ledger
func (r *LoginAttemptRepository) Record(ctx context.Context, subject, sourceAddress string, succeeded bool, device models.DeviceInfo) (*models.LoginAttempt, error) {
	attempt := &models.LoginAttempt{
		ID:            uuid.New().String(),
		Subject:       subject,
		SourceAddress: sourceAddress,
		Succeeded:     succeeded,
		AttemptedAt:   r.now().UTC(),
		OSLabel:       device.OSLabel,
		LocaleLabel:   device.LocaleLabel,
		UserAgent:     device.UserAgent,
	}
	if device.Fingerprint != "" {
		fp := device.Fingerprint
		attempt.DeviceFingerprint = &fp
	}

	query := `
		INSERT INTO login_attempts (id, subject, source_address, succeeded, attempt_at, os_label, locale_label, user_agent, device_fingerprint)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		attempt.ID,
		attempt.Subject,
		attempt.SourceAddress,
		attempt.Succeeded,
		attempt.AttemptedAt,
		attempt.OSLabel,
		attempt.LocaleLabel,
		attempt.UserAgent,
		attempt.DeviceFingerprint,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record login attempt: %w", err)
	}

	return attempt, nil
}

// CountFailuresSinceLastSuccess counts failures for (subject, sourceAddress) after the
// later of windowStart and the last success for the same pair.
// GREATEST ignores NULL, so a missing success falls back to windowStart.
func (r *LoginAttemptRepository) CountFailuresSinceLastSuccess(ctx context.Context, subject, sourceAddress string, windowStart time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM login_attempts
		WHERE subject = $1 AND source_address = $2 AND succeeded = false
		AND attempt_at > GREATEST($3::timestamptz, (
			SELECT MAX(attempt_at) FROM login_attempts
			WHERE subject = $1 AND source_address = $2 AND succeeded = true
		))
	`

	var count int
	if err := r.db.QueryRow(ctx, query, subject, sourceAddress, windowStart.UTC()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count failures for subject: %w", err)
	}
	return count, nil
}

// CountFailuresSinceLastSuccessByAddress is CountFailuresSinceLastSuccess keyed by source address alone
func (r *LoginAttemptRepository) CountFailuresSinceLastSuccessByAddress(ctx context.Context, sourceAddress string, windowStart time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM login_attempts
		WHERE source_address = $1 AND succeeded = false
		AND attempt_at > GREATEST($2::timestamptz, (
			SELECT MAX(attempt_at) FROM login_attempts
			WHERE source_address = $1 AND succeeded = true
		))
	`

	var count int
	if err := r.db.QueryRow(ctx, query, sourceAddress, windowStart.UTC()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count failures for address: %w", err)
	}
	return count, nil
}

// LastSuccess returns the most recent successful attempt for a subject, or nil if there is none
func (r *LoginAttemptRepository) LastSuccess(ctx context.Context, subject string) (*models.LoginAttempt, error) {
	query := `
		SELECT id, subject, source_address, succeeded, attempt_at, os_label, locale_label, user_agent, device_fingerprint
		FROM login_attempts
		WHERE subject = $1 AND succeeded = true
		ORDER BY attempt_at DESC
		LIMIT 1
	`

	attempt, err := scanLoginAttempt(r.db.QueryRow(ctx, query, subject))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load last success: %w", err)
	}
	return attempt, nil
}

func scanLoginAttempt(scanner rowScanner) (*models.LoginAttempt, error) {
	var a models.LoginAttempt
	err := scanner.Scan(
		&a.ID, &a.Subject, &a.SourceAddress, &a.Succeeded, &a.AttemptedAt,
		&a.OSLabel, &a.LocaleLabel, &a.UserAgent, &a.DeviceFingerprint,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
