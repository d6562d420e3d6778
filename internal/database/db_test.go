package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapPostgresError(t *testing.T) {
	other := errors.New("connection reset")

	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "nil", err: nil, expected: nil},
		{name: "no rows", err: fmt.Errorf("scan: %w", pgx.ErrNoRows), expected: models.ErrNotFound},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, expected: models.ErrConflict},
		{name: "not null violation", err: &pgconn.PgError{Code: "23502"}, expected: models.ErrBadRequest},
		{name: "other error passes through", err: other, expected: other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapPostgresError(tt.err))
		})
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
}
