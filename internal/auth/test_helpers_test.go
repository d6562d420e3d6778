package auth_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/auth"
	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/models"
)

var (
	testKey   = []byte("resort-test-signing-key-0123456789abcdef")
	testStart = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
)

// MockSubjectLookup implements auth.SubjectLookup for testing
type MockSubjectLookup struct {
	GetByIDFunc func(ctx context.Context, id string) (*models.User, error)
}

func (m *MockSubjectLookup) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return &models.User{ID: id, Username: "alice", Authorities: []string{"ROLE_USER"}}, nil
}

// testClock is a settable clock shared with the token manager
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestTokenManager(subjects auth.SubjectLookup) (*auth.TokenManager, *testClock) {
	if subjects == nil {
		subjects = &MockSubjectLookup{}
	}
	clock := &testClock{now: testStart}
	tm := auth.NewTokenManager(testKey, time.Hour, 336*time.Hour, subjects, slog.New(slog.NewTextHandler(io.Discard, nil)))
	tm.SetClock(clock.Now)
	return tm, clock
}
