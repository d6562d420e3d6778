//go:build integration

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginAttemptLedger_Postgres(t *testing.T) {
	pool := setupTestPool(t)
	ctx := context.Background()
	repo := NewLoginAttemptRepository(pool)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	at := func(offset time.Duration) func() time.Time {
		return func() time.Time { return base.Add(offset) }
	}
	windows := models.DeviceInfo{SourceAddress: "10.0.0.1", OSLabel: "Windows", Fingerprint: "win"}

	record := func(offset time.Duration, subject, address string, ok bool) {
		repo.SetClock(at(offset))
		_, err := repo.Record(ctx, subject, address, ok, windows)
		require.NoError(t, err)
	}

	t.Run("success resets the compound count", func(t *testing.T) {
		for i := 0; i < 4; i++ {
			record(time.Duration(i)*time.Minute, "alice", "10.0.0.1", false)
		}
		windowStart := base.Add(-30 * time.Minute)

		count, err := repo.CountFailuresSinceLastSuccess(ctx, "alice", "10.0.0.1", windowStart)
		require.NoError(t, err)
		assert.Equal(t, 4, count)

		record(5*time.Minute, "alice", "10.0.0.1", true)
		record(6*time.Minute, "alice", "10.0.0.1", false)

		count, err = repo.CountFailuresSinceLastSuccess(ctx, "alice", "10.0.0.1", windowStart)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("old success falls back to the window", func(t *testing.T) {
		record(-2*time.Hour, "bob", "10.0.0.2", true)
		record(-90*time.Minute, "bob", "10.0.0.2", false)
		record(-10*time.Minute, "bob", "10.0.0.2", false)
		record(-5*time.Minute, "bob", "10.0.0.2", false)

		count, err := repo.CountFailuresSinceLastSuccess(ctx, "bob", "10.0.0.2", base.Add(-30*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("address count spans subjects", func(t *testing.T) {
		for i := 0; i < 15; i++ {
			record(time.Duration(i)*time.Second, "user-"+string(rune('a'+i)), "10.0.0.9", false)
		}

		count, err := repo.CountFailuresSinceLastSuccessByAddress(ctx, "10.0.0.9", base.Add(-30*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 15, count)
	})

	t.Run("last success", func(t *testing.T) {
		last, err := repo.LastSuccess(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, last)
		assert.Equal(t, base.Add(5*time.Minute), last.AttemptedAt.UTC())
		require.NotNil(t, last.DeviceFingerprint)
		assert.Equal(t, "win", *last.DeviceFingerprint)

		none, err := repo.LastSuccess(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("ledger is append-only", func(t *testing.T) {
		_, err := pool.Exec(ctx, `DELETE FROM login_attempts WHERE subject = 'alice'`)
		assert.Error(t, err)

		_, err = pool.Exec(ctx, `UPDATE login_attempts SET succeeded = true WHERE subject = 'bob'`)
		assert.Error(t, err)
	})
}

func TestUserRepository_Postgres(t *testing.T) {
	pool := setupTestPool(t)
	ctx := context.Background()
	repo := NewUserRepository(pool)

	created, err := repo.Create(ctx, &models.User{
		Username:     "alice",
		Email:        "Alice@Resort.test",
		PasswordHash: "$2a$10$hash",
		Authorities:  []string{"ROLE_USER", "ROLE_ADMIN"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	byEmail, err := repo.GetByIdentifier(ctx, "alice@resort.test")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ROLE_USER", "ROLE_ADMIN"}, byID.Authorities)

	_, err = repo.Create(ctx, &models.User{Username: "alice", Email: "other@resort.test", PasswordHash: "h"})
	assert.ErrorIs(t, err, models.ErrConflict)
}
