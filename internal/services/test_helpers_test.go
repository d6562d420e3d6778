package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/auth"
	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/models"
	pkglogger "github.com/BellSoftNetwork/ResortManagementSystem-sub001/pkg/logger"
	"github.com/google/uuid"
)

var testStart = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testClock is a settable clock shared by the ledger and the services under test
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock { return &testClock{now: testStart} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memoryLedger implements LoginAttemptLedger in memory with the same anchor
// rule as the Postgres ledger
type memoryLedger struct {
	mu       sync.Mutex
	clock    *testClock
	attempts []models.LoginAttempt
	err      error
}

func newMemoryLedger(clock *testClock) *memoryLedger {
	return &memoryLedger{clock: clock}
}

func (l *memoryLedger) Record(ctx context.Context, subject, sourceAddress string, succeeded bool, device models.DeviceInfo) (*models.LoginAttempt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}

	attempt := models.LoginAttempt{
		ID:            uuid.New().String(),
		Subject:       subject,
		SourceAddress: sourceAddress,
		Succeeded:     succeeded,
		AttemptedAt:   l.clock.Now(),
		OSLabel:       device.OSLabel,
		LocaleLabel:   device.LocaleLabel,
		UserAgent:     device.UserAgent,
	}
	if device.Fingerprint != "" {
		fp := device.Fingerprint
		attempt.DeviceFingerprint = &fp
	}
	l.attempts = append(l.attempts, attempt)
	return &attempt, nil
}

func (l *memoryLedger) countFailures(match func(models.LoginAttempt) bool, windowStart time.Time) int {
	anchor := windowStart
	for _, a := range l.attempts {
		if match(a) && a.Succeeded && a.AttemptedAt.After(anchor) {
			anchor = a.AttemptedAt
		}
	}

	count := 0
	for _, a := range l.attempts {
		if match(a) && !a.Succeeded && a.AttemptedAt.After(anchor) {
			count++
		}
	}
	return count
}

func (l *memoryLedger) CountFailuresSinceLastSuccess(ctx context.Context, subject, sourceAddress string, windowStart time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return 0, l.err
	}
	return l.countFailures(func(a models.LoginAttempt) bool {
		return a.Subject == subject && a.SourceAddress == sourceAddress
	}, windowStart), nil
}

func (l *memoryLedger) CountFailuresSinceLastSuccessByAddress(ctx context.Context, sourceAddress string, windowStart time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return 0, l.err
	}
	return l.countFailures(func(a models.LoginAttempt) bool {
		return a.SourceAddress == sourceAddress
	}, windowStart), nil
}

func (l *memoryLedger) LastSuccess(ctx context.Context, subject string) (*models.LoginAttempt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}

	var last *models.LoginAttempt
	for i := range l.attempts {
		a := l.attempts[i]
		if a.Subject == subject && a.Succeeded && (last == nil || a.AttemptedAt.After(last.AttemptedAt)) {
			last = &a
		}
	}
	return last, nil
}

func (l *memoryLedger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.attempts)
}

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIdentifierFunc func(ctx context.Context, identifier string) (*models.User, error)
	GetByIDFunc         func(ctx context.Context, id string) (*models.User, error)
	CreateFunc          func(ctx context.Context, user *models.User) (*models.User, error)
}

func (m *MockUserRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	if m.GetByIdentifierFunc != nil {
		return m.GetByIdentifierFunc(ctx, identifier)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func testDevice(address, os string) models.DeviceInfo {
	return models.DeviceInfo{
		SourceAddress: address,
		OSLabel:       os,
		UserAgent:     "test-agent/" + os,
		Fingerprint:   auth.Fingerprint(os),
	}
}

func newTestGuard(ledger LoginAttemptLedger, maxAttempts int) *LoginAttemptService {
	logger := discardLogger()
	return NewLoginAttemptService(ledger, LoginAttemptConfig{
		MaxAttempts: maxAttempts,
		Window:      30 * time.Minute,
	}, logger, pkglogger.NewAuditLogger(logger))
}
