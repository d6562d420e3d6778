package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/database"
	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/models"
)

const userColumns = `id, username, email, password_hash, authorities, created_at, updated_at`

// UserRepository stores credential subjects
type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User
	err := scanner.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Authorities, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &user, nil
}

// GetByIdentifier resolves a login identifier: anything containing "@" is an email, otherwise a username
func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	if strings.Contains(identifier, "@") {
		return r.GetByEmail(ctx, identifier)
	}
	return r.GetByUsername(ctx, identifier)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUserRow(r.db.QueryRow(ctx, query, username))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUserRow(r.db.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUserRow(r.db.QueryRow(ctx, query, id))
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if len(user.Authorities) == 0 {
		user.Authorities = []string{"ROLE_USER"}
	}

	query := `
		INSERT INTO users (username, email, password_hash, authorities)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	created, err := scanUserRow(r.db.QueryRow(ctx, query, user.Username, user.Email, user.PasswordHash, user.Authorities))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}
