package models

import (
	"time"
)

// User is a credential subject. Username and Email are both valid login identifiers.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Authorities  []string // e.g. "ROLE_USER", "ROLE_ADMIN"
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
